package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// EmployeeRepository define el puerto de persistencia para perfiles (Employee).
type EmployeeRepository interface {
	// Create persiste el perfil con el ID indicado (el mismo de la identidad cuando viene de signup).
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	Update(ctx context.Context, employee *entity.Employee) error
	List(ctx context.Context) ([]*entity.Employee, error)
	Delete(ctx context.Context, id string) error
}
