package adaptor

import (
	"passwordless-auth/internal/usecase"
	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth *AuthHandler
	Cron *CronHandler
}

func NewHandler(service *usecase.Service, cookies utils.CookieSettings, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, service.User, cookies, log),
		Cron: NewCronHandler(service.OTP, service.Session, log),
	}
}
