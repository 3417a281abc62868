// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"passwordless-auth/internal/adaptor"
	"passwordless-auth/internal/data/repository"
	"passwordless-auth/internal/usecase"
	"passwordless-auth/pkg/database"
	"passwordless-auth/pkg/mailer"
	"passwordless-auth/pkg/middleware"
	"passwordless-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router and the services background jobs need.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes on top of the repositories.
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	sender mailer.Sender,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, sender, config, logger)
	cookies := utils.CookieSettings{
		Production: config.App.IsProduction(),
		MaxAge:     config.Session.TTL(),
	}
	handler := adaptor.NewHandler(service, cookies, logger)

	router := setupRouter(handler, service, db, cookies, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	db database.PgxIface,
	cookies utils.CookieSettings,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CSRF(logger))

	wireAuth(r, handler.Auth, service.Auth, cookies, logger)
	wireCron(r, handler.Cron, config, logger)

	// Guarded routes rewrite or clear the cookie in AuthSession instead.
	r.With(middleware.RefreshSessionCookie(cookies)).Get("/health", healthHandler(db, logger))

	return r
}

func healthHandler(db database.PgxIface, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Database unavailable", nil, nil)
			return
		}

		utils.ResponseSuccess(w, "OK", nil)
	}
}
