package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	SessionIDKey contextKey = "session_id"
	ExpiresAtKey contextKey = "session_expires_at"
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}

	return userID, true
}

// SetSessionContext stores the authenticated user and the storage id of the session.
// The raw token is deliberately not kept.
func SetSessionContext(ctx context.Context, userID uuid.UUID, sessionID string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	ctx = context.WithValue(ctx, ExpiresAtKey, expiresAt)
	return ctx
}

// GetSessionIDFromContext returns the storage id of the current session.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	if !ok || sessionID == "" {
		return "", false
	}

	return sessionID, true
}

// GetSessionExpiryFromContext returns the expiry of the current session after any extension.
func GetSessionExpiryFromContext(ctx context.Context) (time.Time, bool) {
	expiresAt, ok := ctx.Value(ExpiresAtKey).(time.Time)
	return expiresAt, ok
}
