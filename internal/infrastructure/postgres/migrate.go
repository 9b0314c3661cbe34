package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

// Migrate aplica el esquema (idempotente) sobre el pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}

// NewRepositories construye el conjunto de repositorios sobre el pool.
func NewRepositories(pool *pgxpool.Pool) repository.Set {
	return repository.Set{
		Companies:   NewCompanyRepository(pool),
		Employees:   NewEmployeeRepository(pool),
		Assets:      NewAssetRepository(pool),
		Activity:    NewActivityRepository(pool),
		Credentials: NewCredentialRepository(pool),
		Tx:          NewTxRunner(pool),
	}
}
