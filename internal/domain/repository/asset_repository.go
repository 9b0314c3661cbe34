package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// AssetRepository define el puerto de persistencia para activos.
// El historial se guarda junto al activo (append-only a nivel de caso de uso).
type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	GetByID(ctx context.Context, id string) (*entity.Asset, error)
	Update(ctx context.Context, asset *entity.Asset) error
	List(ctx context.Context) ([]*entity.Asset, error)
	// CountByCompany cuenta los activos que referencian la empresa.
	CountByCompany(ctx context.Context, companyID string) (int, error)
}
