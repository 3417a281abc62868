package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"passwordless-auth/internal/data/entity"
	"passwordless-auth/internal/usecase"
	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

// SessionAuthenticator resolves a raw session token to its user and session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*entity.User, *entity.Session, error)
}

// AuthSession validates the session token from the cookie or the
// Authorization header and stores the user and session id in the context.
// Validation slides the session expiry, so a valid cookie is rewritten with a fresh max-age.
func AuthSession(auth SessionAuthenticator, cookies utils.CookieSettings, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			token, fromCookie := utils.SessionCookieValue(r)
			if !fromCookie {
				var ok bool
				if token, ok = utils.BearerToken(r); !ok {
					utils.ResponseError(w, http.StatusUnauthorized, usecase.CodeInvalidSession, "Authentication required")
					return
				}
			}

			user, session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, usecase.ErrInvalidCredential) {
					if fromCookie {
						utils.ClearSessionCookie(w, cookies)
					}
					utils.ResponseError(w, http.StatusUnauthorized, usecase.CodeInvalidSession, "Invalid or expired session")
					return
				}

				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseError(w, http.StatusInternalServerError, usecase.CodeInternal, "Internal server error")
				return
			}

			if fromCookie {
				utils.SetSessionCookie(w, cookies, token)
			}

			ctx := utils.SetSessionContext(r.Context(), user.ID, session.ID, session.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CronAuth admits requests carrying "Authorization: Bearer <secret>".
// An empty secret locks the route.
func CronAuth(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := utils.BearerToken(r)
			if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warn("Rejected cron request",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
