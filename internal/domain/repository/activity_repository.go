package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ActivityRepository define el puerto de la colección de actividad reciente.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	// ListRecent devuelve las últimas limit actividades, más reciente primero.
	ListRecent(ctx context.Context, limit int) ([]*entity.Activity, error)
}
