package usecase

import (
	"context"
	"fmt"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/internal/dto/response"
	"passwordless-auth/pkg/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginChallenge describes a code that was issued and handed to the mailer.
type LoginChallenge struct {
	UserID    uuid.UUID
	IsNewUser bool
	ExpiresIn time.Duration
}

// AuthService drives the login flow: email in, code out by mail, code in, session out.
type AuthService interface {
	RequestCode(ctx context.Context, email string) (*LoginChallenge, error)
	VerifyCode(ctx context.Context, code string) (*response.AuthResponse, error)
	Authenticate(ctx context.Context, rawToken string) (*entity.User, *entity.Session, error)
	Sessions(ctx context.Context, userID uuid.UUID, currentID string) ([]response.SessionResponse, error)
	Logout(ctx context.Context, sessionID string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

type authService struct {
	users    UserService
	otps     OTPService
	sessions SessionService
	userRepo repository.UserRepository
	mailer   mailer.Sender
	log      *zap.Logger
}

func NewAuthService(
	users UserService,
	otps OTPService,
	sessions SessionService,
	userRepo repository.UserRepository,
	sender mailer.Sender,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:    users,
		otps:     otps,
		sessions: sessions,
		userRepo: userRepo,
		mailer:   sender,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) RequestCode(ctx context.Context, email string) (*LoginChallenge, error) {
	// 1. Resolve user
	result, err := s.users.FindOrCreate(ctx, email)
	if err != nil {
		s.log.Error("Failed to resolve user", zap.Error(err))
		return nil, err
	}
	user := result.User

	// 2. Issue code, replacing any previous one
	code, err := s.otps.Issue(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue OTP", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	// 3. Deliver
	msg, err := mailer.NewOTPMessage(user.Email, code, s.otps.Expiry())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("Failed to send OTP email", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.log.Info("Login code sent",
		zap.String("user_id", user.ID.String()),
		zap.Bool("new_user", result.IsNewUser))

	return &LoginChallenge{
		UserID:    user.ID,
		IsNewUser: result.IsNewUser,
		ExpiresIn: s.otps.Expiry(),
	}, nil
}

func (s *authService) VerifyCode(ctx context.Context, code string) (*response.AuthResponse, error) {
	// 1. Resolve code to its owner
	user, err := s.otps.Verify(ctx, code)
	if err != nil {
		s.log.Warn("OTP verification rejected", zap.String("reason", ErrorCode(err)))
		return nil, err
	}

	// 2. Open session
	issued, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	// 3. Burn the code. The session already exists, so a failure here only gets logged.
	if _, err := s.otps.Consume(ctx, user.ID); err != nil {
		s.log.Warn("Failed to consume OTP after login", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &response.AuthResponse{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Token:     issued.Token,
		ExpiresAt: issued.Session.ExpiresAt,
	}, nil
}

// Authenticate validates a raw token and loads its owner. A session whose user
// has disappeared is treated as invalid.
func (s *authService) Authenticate(ctx context.Context, rawToken string) (*entity.User, *entity.Session, error) {
	session, err := s.sessions.Validate(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, storageError("find session owner", err)
	}
	if user == nil {
		s.log.Warn("Session owner missing", zap.String("user_id", session.UserID.String()))
		return nil, nil, ErrInvalidSession
	}

	return user, session, nil
}

func (s *authService) Sessions(ctx context.Context, userID uuid.UUID, currentID string) ([]response.SessionResponse, error) {
	sessions, err := s.sessions.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]response.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, response.SessionToResponse(session, session.ID == currentID))
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		s.log.Error("Failed to logout", zap.Error(err))
		return err
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.sessions.InvalidateAll(ctx, userID)
	if err != nil {
		s.log.Error("Failed to logout everywhere", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, err
	}
	return deleted, nil
}
