package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login. ID is the hex digest of the raw token
// held by the client; the token itself is never stored.
type Session struct {
	ID        string    `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NeedsRenewal reports whether now falls inside the sliding renewal window.
func (s *Session) NeedsRenewal(now time.Time, window time.Duration) bool {
	return !now.Before(s.ExpiresAt.Add(-window))
}
