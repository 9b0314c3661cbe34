package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// CredentialRepository define el almacenamiento del proveedor de identidad.
// Create devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
type CredentialRepository interface {
	Create(ctx context.Context, cred *entity.Credential) error
	GetByEmail(ctx context.Context, email string) (*entity.Credential, error)
	Delete(ctx context.Context, uid string) error
}
