package wire

import (
	"passwordless-auth/internal/adaptor"
	"passwordless-auth/pkg/middleware"
	"passwordless-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	authenticator middleware.SessionAuthenticator,
	cookies utils.CookieSettings,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/verify", authHandler.Verify)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(authenticator, cookies, log))

		r.Get("/api/me", authHandler.Me)
		r.Get("/api/sessions", authHandler.Sessions)
		r.Post("/api/logout", authHandler.Logout)
		r.Post("/api/logout-all", authHandler.LogoutAll)
	})
}
