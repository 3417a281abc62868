package adaptor

import (
	"context"
	"net/http"

	"passwordless-auth/internal/dto/response"
	"passwordless-auth/internal/usecase"
	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

// CronHandler exposes the expiry sweeps to an external scheduler.
type CronHandler struct {
	otp     usecase.OTPService
	session usecase.SessionService
	log     *zap.Logger
}

func NewCronHandler(otp usecase.OTPService, session usecase.SessionService, log *zap.Logger) *CronHandler {
	return &CronHandler{
		otp:     otp,
		session: session,
		log:     log,
	}
}

// CleanupOTPs handles GET /api/cron/cleanup-otps
func (h *CronHandler) CleanupOTPs(w http.ResponseWriter, r *http.Request) {
	h.sweep(w, r, "otp", h.otp.SweepExpired)
}

// CleanupSessions handles GET /api/cron/cleanup-sessions
func (h *CronHandler) CleanupSessions(w http.ResponseWriter, r *http.Request) {
	h.sweep(w, r, "session", h.session.SweepExpired)
}

func (h *CronHandler) sweep(w http.ResponseWriter, r *http.Request, target string, fn func(context.Context) (int64, error)) {
	deleted, err := fn(r.Context())
	if err != nil {
		h.log.Error("Cleanup failed", zap.String("target", target), zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, response.CleanupResponse{
			Success: false,
			Error:   "Cleanup failed",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, response.CleanupResponse{
		Success:      true,
		DeletedCount: &deleted,
	})
}
