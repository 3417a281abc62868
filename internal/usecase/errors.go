package usecase

import (
	"errors"
	"fmt"
)

// Error taxonomy of the credential engine. Callers branch on these with
// errors.Is; the wrapped messages are never shown to clients.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("expired credential")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage failure")
	ErrDelivery          = errors.New("delivery failure")
)

var (
	ErrMalformedEmail = fmt.Errorf("%w: email", ErrMalformedInput)
	ErrMalformedCode  = fmt.Errorf("%w: code", ErrMalformedInput)
	ErrInvalidCode    = fmt.Errorf("%w: code", ErrInvalidCredential)
	ErrExpiredCode    = fmt.Errorf("%w: code", ErrExpiredCredential)
	ErrInvalidSession = fmt.Errorf("%w: session", ErrInvalidCredential)
	ErrUserNotFound   = fmt.Errorf("%w: user", ErrNotFound)
)

// Opaque error codes handed to clients.
const (
	CodeInvalidEmail       = "invalid-email"
	CodeInvalidCodeFormat  = "invalid-code-format"
	CodeInvalidCode        = "invalid-code"
	CodeCodeExpired        = "code-expired"
	CodeInvalidSession     = "invalid-session"
	CodeVerificationFailed = "verification-failed"
	CodeEmailSendFailed    = "email-send-failed"
	CodeInternal           = "internal-error"
)

// ErrorCode maps an engine error to the opaque code a client may see.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrMalformedInput):
		return CodeInvalidCodeFormat
	case errors.Is(err, ErrInvalidSession):
		return CodeInvalidSession
	case errors.Is(err, ErrInvalidCredential):
		return CodeInvalidCode
	case errors.Is(err, ErrExpiredCredential):
		return CodeCodeExpired
	case errors.Is(err, ErrNotFound):
		return CodeVerificationFailed
	case errors.Is(err, ErrDelivery):
		return CodeEmailSendFailed
	default:
		return CodeInternal
	}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
