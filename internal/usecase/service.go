package usecase

import (
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/pkg/mailer"
	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	OTP     OTPService
	Session SessionService
}

func NewService(repo *repository.Repository, sender mailer.Sender, config *utils.Config, log *zap.Logger) *Service {
	users := NewUserService(repo.User, log)
	otps := NewOTPService(repo.OTP, repo.User, config.OTP, log)
	sessions := NewSessionService(repo.Session, config.Session, log)

	return &Service{
		Auth:    NewAuthService(users, otps, sessions, repo.User, sender, log),
		User:    users,
		OTP:     otps,
		Session: sessions,
	}
}
