package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// EmployeeStore operaciones de perfiles de la capa de datos. Lo implementa *catalog.Store.
type EmployeeStore interface {
	Employees(ctx context.Context) []entity.Employee
	EmployeeByID(ctx context.Context, id string) *entity.Employee
	CreateEmployee(ctx context.Context, in catalog.NewEmployee) (*entity.Employee, error)
	UpdateEmployee(ctx context.Context, id string, patch catalog.EmployeePatch) (*entity.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// SessionRevoker cierra las sesiones vivas de un usuario. Lo implementa *session.Registry.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, uid string) int
}

// EmployeeUseCase casos de uso de administración de perfiles.
type EmployeeUseCase struct {
	store    EmployeeStore
	sessions SessionRevoker
	log      zerolog.Logger
}

// NewEmployeeUseCase construye el caso de uso. sessions puede ser nil.
func NewEmployeeUseCase(store EmployeeStore, sessions SessionRevoker, logger zerolog.Logger) *EmployeeUseCase {
	return &EmployeeUseCase{store: store, sessions: sessions, log: logger}
}

// Create da de alta un perfil (inactivo) sin cuenta de acceso.
func (uc *EmployeeUseCase) Create(ctx context.Context, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	e, err := uc.store.CreateEmployee(ctx, catalog.NewEmployee{
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
		JobTitle:   in.JobTitle,
		Role:       in.Role,
	})
	if err != nil {
		return nil, err
	}
	return ToEmployeeResponse(e), nil
}

// GetByID obtiene un perfil. Devuelve domain.ErrNotFound si no existe.
func (uc *EmployeeUseCase) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	e := uc.store.EmployeeByID(ctx, id)
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return ToEmployeeResponse(e), nil
}

// List lista todos los perfiles.
func (uc *EmployeeUseCase) List(ctx context.Context) *dto.EmployeeListResponse {
	list := uc.store.Employees(ctx)
	items := make([]dto.EmployeeResponse, 0, len(list))
	for i := range list {
		items = append(items, *ToEmployeeResponse(&list[i]))
	}
	return &dto.EmployeeListResponse{Items: items, Total: len(items)}
}

// Update aplica cambios de administrador. Desactivar un perfil o cambiar su rol cierra sus
// sesiones vivas: el perfil que tienen cargado ya no es válido.
func (uc *EmployeeUseCase) Update(ctx context.Context, id string, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	prior := uc.store.EmployeeByID(ctx, id)
	e, err := uc.store.UpdateEmployee(ctx, id, catalog.EmployeePatch{
		Name:       in.Name,
		Department: in.Department,
		JobTitle:   in.JobTitle,
		AvatarURL:  in.AvatarURL,
		Role:       in.Role,
		Active:     in.Active,
	})
	if err != nil {
		return nil, err
	}
	if prior == nil || (prior.Active && !e.Active) || prior.Role != e.Role {
		uc.revoke(ctx, id)
	}
	return ToEmployeeResponse(e), nil
}

// Delete elimina el perfil y cierra sus sesiones.
func (uc *EmployeeUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	uc.revoke(ctx, id)
	return nil
}

func (uc *EmployeeUseCase) revoke(ctx context.Context, id string) {
	if uc.sessions == nil {
		return
	}
	if n := uc.sessions.RevokeUser(ctx, id); n > 0 {
		uc.log.Info().Str("employee_id", id).Int("sessions", n).Msg("sesiones cerradas por cambio de perfil")
	}
}
