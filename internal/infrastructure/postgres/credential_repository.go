package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo almacén de credenciales del proveedor de identidad sobre PostgreSQL.
type CredentialRepo struct {
	q Querier
}

// NewCredentialRepository construye el adaptador de credenciales.
func NewCredentialRepository(q Querier) *CredentialRepo {
	return &CredentialRepo{q: q}
}

// Create persiste una credencial.
func (r *CredentialRepo) Create(ctx context.Context, c *entity.Credential) error {
	query := `INSERT INTO credentials (uid, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, c.UID, c.Email, c.PasswordHash, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetByEmail obtiene la credencial por email (sin distinguir mayúsculas).
func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	query := `SELECT uid, email, password_hash, created_at FROM credentials WHERE lower(email) = lower($1)`
	var c entity.Credential
	err := r.q.QueryRow(ctx, query, email).Scan(&c.UID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential by email: %w", err)
	}
	return &c, nil
}

// Delete elimina la credencial. No es error si no existe.
func (r *CredentialRepo) Delete(ctx context.Context, uid string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM credentials WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
