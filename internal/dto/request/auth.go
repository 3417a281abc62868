package request

type LoginRequest struct {
	Email string `json:"email" validate:"required,strict_email"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" validate:"required,numeric"`
}
