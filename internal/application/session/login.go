package session

import (
	"errors"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
)

// LoginCode taxonomía cerrada de errores de login para mostrar al usuario.
type LoginCode string

const (
	CodeInvalidCredentials LoginCode = "INVALID_CREDENTIALS"
	CodeAccountNotActive   LoginCode = "ACCOUNT_NOT_ACTIVE"
	CodeRateLimited        LoginCode = "TOO_MANY_REQUESTS"
	CodeUnknown            LoginCode = "UNKNOWN"
)

// Message texto para el usuario.
func (c LoginCode) Message() string {
	switch c {
	case CodeInvalidCredentials:
		return "email o contraseña incorrectos"
	case CodeAccountNotActive:
		return "la cuenta está pendiente de activación por un administrador"
	case CodeRateLimited:
		return "demasiados intentos fallidos, intente más tarde"
	}
	return "no se pudo iniciar sesión, intente de nuevo"
}

// AuthError error de login o registro con su código de la taxonomía.
type AuthError struct {
	Code LoginCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// CodeOf devuelve el código de err, CodeUnknown si no es un AuthError.
func CodeOf(err error) LoginCode {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// classifyProvider traduce los códigos del proveedor a la taxonomía cerrada.
func classifyProvider(err error) LoginCode {
	switch ports.ProviderCode(err) {
	case ports.CodeUserNotFound, ports.CodeWrongPassword, ports.CodeInvalidCredential, ports.CodeInvalidEmail:
		return CodeInvalidCredentials
	case ports.CodeTooManyRequests:
		return CodeRateLimited
	}
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, domain.ErrTooManyRequests):
		return CodeRateLimited
	}
	return CodeUnknown
}

// classifyRejection traduce el motivo de un rechazo de perfil.
func classifyRejection(err error) LoginCode {
	switch {
	case errors.Is(err, domain.ErrPendingActivation):
		return CodeAccountNotActive
	case errors.Is(err, domain.ErrProfileMissing):
		return CodeInvalidCredentials
	}
	return CodeUnknown
}
