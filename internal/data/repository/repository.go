package repository

import (
	"errors"

	"passwordless-auth/pkg/database"

	"go.uber.org/zap"
)

// ErrNotFound marks a write that targeted a row which does not exist.
// Reads report a missing row as (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	User    UserRepository
	Session SessionRepository
	OTP     OTPRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		OTP:     NewOTPRepository(db, log),
	}
}
