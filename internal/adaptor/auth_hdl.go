package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"passwordless-auth/internal/dto/request"
	"passwordless-auth/internal/dto/response"
	"passwordless-auth/internal/usecase"
	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	user    usecase.UserService
	cookies utils.CookieSettings
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, user usecase.UserService, cookies utils.CookieSettings, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		user:    user,
		cookies: cookies,
		log:     log,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.log.Debug("Login validation failed", zap.String("errors", utils.FormatValidationErrors(validationErrors)))
		utils.ResponseError(w, http.StatusBadRequest, usecase.CodeInvalidEmail, "Invalid email address")
		return
	}

	challenge, err := h.service.RequestCode(r.Context(), req.Email)
	if err != nil {
		h.handleServiceError(w, err, "request login code")
		return
	}

	utils.ResponseSuccess(w, "Login code sent. Check your email.", response.LoginResponse{
		IsNewUser: challenge.IsNewUser,
		ExpiresIn: int(challenge.ExpiresIn.Seconds()),
	})
}

// Verify handles POST /api/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseError(w, http.StatusBadRequest, usecase.CodeInvalidCodeFormat, "Invalid code format")
		return
	}

	auth, err := h.service.VerifyCode(r.Context(), req.Code)
	if err != nil {
		h.handleServiceError(w, err, "verify code")
		return
	}

	utils.SetSessionCookie(w, h.cookies, auth.Token)
	utils.ResponseSuccess(w, "Login successful", auth)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.user.GetProfile(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "get profile")
		return
	}

	expiresAt, _ := utils.GetSessionExpiryFromContext(r.Context())
	utils.ResponseSuccess(w, "Profile retrieved successfully", response.MeResponse{
		User:             *profile,
		SessionExpiresAt: expiresAt,
	})
}

// Sessions handles GET /api/sessions
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	sessionID, _ := utils.GetSessionIDFromContext(r.Context())

	sessions, err := h.service.Sessions(r.Context(), userID, sessionID)
	if err != nil {
		h.handleServiceError(w, err, "list sessions")
		return
	}

	utils.ResponseSuccess(w, "Sessions retrieved successfully", sessions)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := utils.GetSessionIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		h.handleServiceError(w, err, "logout")
		return
	}

	utils.ClearSessionCookie(w, h.cookies)
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// LogoutAll handles POST /api/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	deleted, err := h.service.LogoutAll(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "logout all")
		return
	}

	utils.ClearSessionCookie(w, h.cookies)
	utils.ResponseSuccess(w, "Logged out from all devices", response.LogoutAllResponse{DeletedCount: deleted})
}

// handleServiceError maps engine errors to HTTP statuses. Clients only ever see the opaque code.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	code := usecase.ErrorCode(err)

	switch {
	case errors.Is(err, usecase.ErrMalformedInput):
		h.log.Warn(operation+" failed - malformed input", zap.Error(err))
		utils.ResponseError(w, http.StatusBadRequest, code, "Invalid input")

	case errors.Is(err, usecase.ErrInvalidSession):
		h.log.Warn(operation+" failed - invalid session", zap.Error(err))
		utils.ClearSessionCookie(w, h.cookies)
		utils.ResponseError(w, http.StatusUnauthorized, code, "Invalid or expired session")

	case errors.Is(err, usecase.ErrInvalidCredential):
		h.log.Warn(operation+" failed - invalid code", zap.Error(err))
		utils.ResponseError(w, http.StatusUnauthorized, code, "Invalid code")

	case errors.Is(err, usecase.ErrExpiredCredential):
		h.log.Warn(operation+" failed - expired code", zap.Error(err))
		utils.ResponseError(w, http.StatusUnauthorized, code, "Code expired, request a new one")

	case errors.Is(err, usecase.ErrNotFound):
		h.log.Error(operation+" failed - user not found", zap.Error(err))
		utils.ResponseError(w, http.StatusInternalServerError, code, "Verification failed")

	case errors.Is(err, usecase.ErrDelivery):
		h.log.Error(operation+" failed - email delivery", zap.Error(err))
		utils.ResponseError(w, http.StatusBadGateway, code, "Could not send email")

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseError(w, http.StatusInternalServerError, usecase.CodeInternal, "Internal server error")
	}
}
