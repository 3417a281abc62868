package wire

import (
	"passwordless-auth/internal/adaptor"
	"passwordless-auth/pkg/middleware"
	"passwordless-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireCron exposes the sweeps to an external scheduler holding CRON_SECRET.
func wireCron(
	r chi.Router,
	cronHandler *adaptor.CronHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(middleware.CronAuth(config.Cron.Secret, log)).Route("/api/cron", func(r chi.Router) {
		r.Get("/cleanup-otps", cronHandler.CleanupOTPs)
		r.Get("/cleanup-sessions", cronHandler.CleanupSessions)
	})
}
