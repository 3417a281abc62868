package response

import (
	"time"

	"passwordless-auth/internal/data/entity"
)

type LoginResponse struct {
	IsNewUser bool `json:"is_new_user"`
	ExpiresIn int  `json:"expires_in"`
}

type AuthResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type MeResponse struct {
	User             UserResponse `json:"user"`
	SessionExpiresAt time.Time    `json:"session_expires_at"`
}

type SessionResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

type LogoutAllResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// CleanupResponse is the bare body returned to the cron caller.
type CleanupResponse struct {
	Success      bool   `json:"success"`
	DeletedCount *int64 `json:"deletedCount,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// SessionToResponse never exposes the storage id, since it is the token digest.
func SessionToResponse(session *entity.Session, current bool) SessionResponse {
	return SessionResponse{
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		Current:   current,
	}
}
