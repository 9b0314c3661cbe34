package entity

import "time"

// Credential es el registro del proveedor de identidad (email + hash bcrypt).
// UID es el mismo ID del Employee asociado.
type Credential struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
