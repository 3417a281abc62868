package usecase

import (
	"context"
	"errors"
	"time"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/pkg/database"
	"passwordless-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxIssueAttempts bounds regeneration when a fresh code collides with
// another user's live code under the unique hash index.
const maxIssueAttempts = 3

var errCodeCollision = errors.New("could not generate a unique code")

// ConsumeResult reports what a consume call removed.
type ConsumeResult struct {
	InitialCount   int64
	DeletedCount   int64
	RemainingCount int64
}

// Complete is false when codes survived the delete.
func (r *ConsumeResult) Complete() bool {
	return r.RemainingCount == 0
}

// OTPService issues and checks one-time login codes. A user has at most one live code.
type OTPService interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Verify(ctx context.Context, rawCode string) (*entity.User, error)
	Consume(ctx context.Context, userID uuid.UUID) (*ConsumeResult, error)
	SweepExpired(ctx context.Context) (int64, error)
	Expiry() time.Duration
}

type otpService struct {
	otpRepo  repository.OTPRepository
	userRepo repository.UserRepository
	length   int
	expiry   time.Duration
	log      *zap.Logger
	now      func() time.Time
	newCode  func(digits int) (string, error)
}

func NewOTPService(
	otpRepo repository.OTPRepository,
	userRepo repository.UserRepository,
	config utils.OTPConfig,
	log *zap.Logger,
) OTPService {
	return &otpService{
		otpRepo:  otpRepo,
		userRepo: userRepo,
		length:   config.Length,
		expiry:   config.Expiry(),
		log:      log.With(zap.String("service", "otp")),
		now:      time.Now,
		newCode:  utils.NewNumericCode,
	}
}

func (s *otpService) Expiry() time.Duration {
	return s.expiry
}

// Issue replaces any code the user holds with a fresh one and returns the raw code
// for delivery. Only its digest is persisted.
func (s *otpService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		code, err := s.newCode(s.length)
		if err != nil {
			s.log.Error("Failed to generate OTP", zap.Error(err))
			return "", err
		}

		now := s.now().UTC()
		otp := &entity.OTP{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			UserID:    userID,
			CodeHash:  utils.HashSecret(code),
			ExpiresAt: now.Add(s.expiry),
		}

		replaced, err := s.otpRepo.Replace(ctx, otp)
		switch {
		case err == nil:
			s.log.Info("OTP issued",
				zap.String("user_id", userID.String()),
				zap.Int64("replaced", replaced),
				zap.Time("expires_at", otp.ExpiresAt),
			)
			return code, nil
		case errors.Is(err, repository.ErrNotFound):
			return "", ErrUserNotFound
		case database.IsUniqueViolation(err):
			s.log.Warn("OTP digest collision, regenerating",
				zap.String("user_id", userID.String()),
				zap.Int("attempt", attempt),
			)
		default:
			return "", storageError("store OTP", err)
		}
	}

	return "", storageError("store OTP", errCodeCollision)
}

// Verify resolves a raw code to its owner. Unknown codes and codes of other
// shapes are rejected before any expiry information is revealed.
func (s *otpService) Verify(ctx context.Context, rawCode string) (*entity.User, error) {
	if !s.wellFormed(rawCode) {
		return nil, ErrMalformedCode
	}

	otp, err := s.otpRepo.FindByCodeHash(ctx, utils.HashSecret(rawCode))
	if err != nil {
		return nil, storageError("find OTP", err)
	}
	if otp == nil {
		return nil, ErrInvalidCode
	}

	if otp.IsExpired(s.now()) {
		if err := s.otpRepo.DeleteByID(ctx, otp.ID); err != nil {
			s.log.Warn("Failed to remove expired OTP",
				zap.Error(err),
				zap.String("otp_id", otp.ID.String()),
			)
		}
		return nil, ErrExpiredCode
	}

	user, err := s.userRepo.FindByID(ctx, otp.UserID)
	if err != nil {
		return nil, storageError("find OTP owner", err)
	}
	if user == nil {
		s.log.Error("OTP owner missing", zap.String("user_id", otp.UserID.String()))
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Consume removes every code of the user and checks that none survived.
// Leftover codes are reported in the result and logged, not returned as an error.
func (s *otpService) Consume(ctx context.Context, userID uuid.UUID) (*ConsumeResult, error) {
	initial, err := s.otpRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, storageError("count OTPs", err)
	}
	if initial == 0 {
		return &ConsumeResult{}, nil
	}

	deleted, err := s.otpRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return nil, storageError("delete OTPs", err)
	}

	remaining, err := s.otpRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, storageError("recount OTPs", err)
	}

	result := &ConsumeResult{
		InitialCount:   initial,
		DeletedCount:   deleted,
		RemainingCount: remaining,
	}

	if !result.Complete() {
		s.log.Warn("OTP codes remain after consume",
			zap.String("user_id", userID.String()),
			zap.Int64("deleted", deleted),
			zap.Int64("remaining", remaining),
		)
	}

	return result, nil
}

// SweepExpired deletes every code past its expiry. Safe to run alongside issue and verify.
func (s *otpService) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := s.otpRepo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storageError("sweep OTPs", err)
	}

	s.log.Info("Cleaned up expired OTP codes", zap.Int64("deleted", deleted))
	return deleted, nil
}

func (s *otpService) wellFormed(code string) bool {
	if len(code) != s.length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
