package entity

import (
	"time"

	"github.com/google/uuid"
)

// OTP is a one-time login code. Only the SHA-256 digest of the code is stored.
type OTP struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	CodeHash  string    `db:"code_hash"`
	ExpiresAt time.Time `db:"expires_at"`
}

// IsExpired reports whether the code is past its validity window at now.
func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
