package usecase

import (
	"context"
	"strings"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/internal/dto/response"
	"passwordless-auth/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FindOrCreateResult tells the caller which user an email resolved to.
type FindOrCreateResult struct {
	User      *entity.User
	IsNewUser bool
}

type UserService interface {
	FindOrCreate(ctx context.Context, email string) (*FindOrCreateResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log.With(zap.String("service", "user")),
		now:      time.Now,
	}
}

// FindOrCreate resolves email to a user, creating one on first sight.
// The email must already be validated by the caller; it is matched exactly.
func (us *userService) FindOrCreate(ctx context.Context, email string) (*FindOrCreateResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrMalformedEmail
	}

	user, err := us.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, storageError("find user", err)
	}
	if user != nil {
		return &FindOrCreateResult{User: user, IsNewUser: false}, nil
	}

	user = &entity.User{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: us.now().UTC(),
		},
		Email: email,
	}

	if err := us.userRepo.Create(ctx, user); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, storageError("create user", err)
		}

		// Another request created the same email first.
		existing, findErr := us.userRepo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, storageError("find user after conflict", findErr)
		}
		if existing == nil {
			return nil, storageError("find user after conflict", err)
		}

		us.log.Debug("Resolved concurrent user creation", zap.String("user_id", existing.ID.String()))
		return &FindOrCreateResult{User: existing, IsNewUser: false}, nil
	}

	us.log.Info("User created", zap.String("user_id", user.ID.String()))

	return &FindOrCreateResult{User: user, IsNewUser: true}, nil
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storageError("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}
