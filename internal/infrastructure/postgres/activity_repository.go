package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo implementación de ActivityRepository sobre PostgreSQL (usable con pool o tx).
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador de actividad.
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

// Create registra una actividad.
func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO activity (id, asset_id, asset_serial, employee_id, employee_name, date, action)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, a.ID, a.AssetID, a.AssetSerial, a.EmployeeID, a.EmployeeName, a.Date, a.Action)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListRecent devuelve las últimas limit actividades, más reciente primero.
func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Activity, error) {
	query := `
		SELECT id, asset_id, asset_serial, employee_id, employee_name, date, action
		FROM activity ORDER BY date DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var list []*entity.Activity
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.AssetID, &a.AssetSerial, &a.EmployeeID, &a.EmployeeName, &a.Date, &a.Action); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
