package ports

import (
	"context"
	"errors"
)

// Identity es el principal autenticado por el proveedor de identidad, todavía sin
// datos de perfil de la aplicación.
type Identity struct {
	UID   string
	Email string
}

// Códigos de error del proveedor de identidad.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeNoCurrentUser     = "auth/no-current-user"
	CodeInternal          = "auth/internal-error"
)

// ProviderError error devuelto por el proveedor con su código.
type ProviderError struct {
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderCode extrae el código de proveedor de err, o "" si no lo tiene.
func ProviderCode(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IdentityClient es el cliente del servicio de autenticación, con el estado de una sola
// sesión (equivalente a la instancia del SDK en un navegador). SignIn, SignUp, SignOut y
// DeleteAccount notifican a los listeners antes de retornar cuando la identidad cambia.
type IdentityClient interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
	// DeleteAccount elimina la cuenta con sesión iniciada y cierra la sesión.
	DeleteAccount(ctx context.Context) error
	// OnIdentityChanged registra fn; se invoca con la identidad actual al suscribirse y en
	// cada cambio posterior (nil = sin identidad).
	OnIdentityChanged(fn func(*Identity)) (unsubscribe func())
}
