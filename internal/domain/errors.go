package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Activos
	ErrDuplicateTag = errors.New("el número de placa ya está asignado a otro activo")
	ErrCompanyInUse = errors.New("la empresa tiene activos asociados")

	// Sesión e identidad
	ErrPendingActivation  = errors.New("la cuenta está pendiente de activación por un administrador")
	ErrProfileMissing     = errors.New("no existe un perfil para esta identidad")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrTooManyRequests    = errors.New("demasiados intentos, intente más tarde")
	ErrWeakPassword       = errors.New("la contraseña es demasiado débil")
	ErrNotAuthenticated   = errors.New("no hay una sesión activa")
)
