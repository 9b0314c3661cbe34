package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// NewEmployee datos de un empleado creado por un administrador.
type NewEmployee struct {
	Name       string
	Email      string
	Department string
	JobTitle   string
	Role       string
}

// EmployeePatch actualización parcial de un perfil (nil = sin cambio).
// Los campos de autoservicio son Name, Department, JobTitle y AvatarURL;
// Role y Active son acciones de administrador.
type EmployeePatch struct {
	Name       *string
	Department *string
	JobTitle   *string
	AvatarURL  *string
	Role       *string
	Active     *bool
}

// Empty informa si el patch no cambia nada.
func (p EmployeePatch) Empty() bool {
	return p.Name == nil && p.Department == nil && p.JobTitle == nil &&
		p.AvatarURL == nil && p.Role == nil && p.Active == nil
}

// CreateEmployee registra un perfil nuevo, inactivo y sin avatar.
func (s *Store) CreateEmployee(ctx context.Context, in NewEmployee) (*entity.Employee, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleEmployee
	}
	now := s.now()
	employee := &entity.Employee{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Department: strings.TrimSpace(in.Department),
		JobTitle:   strings.TrimSpace(in.JobTitle),
		Role:       role,
		Active:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, err
	}
	s.committed("create_employee", employee.ID)
	return employee, nil
}

// CreateProfile escribe el perfil bajo el ID ya asignado por el proveedor de identidad.
func (s *Store) CreateProfile(ctx context.Context, employee *entity.Employee) error {
	if employee == nil || employee.ID == "" {
		return fmt.Errorf("%w: el perfil requiere ID", domain.ErrInvalidInput)
	}
	if err := validateEmployee(employee); err != nil {
		return err
	}
	now := s.now()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	if err := s.employees.Create(ctx, employee); err != nil {
		return err
	}
	s.committed("create_profile", employee.ID)
	return nil
}

// UpdateEmployee aplica el patch sobre el perfil almacenado y devuelve el resultado.
// Rechaza avatares inline: AvatarURL debe ser una URL ya subida a blob storage.
func (s *Store) UpdateEmployee(ctx context.Context, id string, patch EmployeePatch) (*entity.Employee, error) {
	if patch.AvatarURL != nil && IsInlinePayload(*patch.AvatarURL) {
		return nil, fmt.Errorf("%w: el avatar debe subirse antes de guardarse en el perfil", domain.ErrInvalidInput)
	}
	if patch.Role != nil && !entity.ValidRole(*patch.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, *patch.Role)
	}
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrNotFound
	}
	applyEmployeePatch(employee, patch)
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}
	employee.UpdatedAt = s.now()
	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, err
	}
	s.committed("update_employee", id)
	return employee, nil
}

// DeleteEmployee elimina el perfil. Devuelve domain.ErrConflict si todavía tiene activos
// asignados: primero deben devolverse.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	list, err := s.assets.List(ctx)
	if err != nil {
		return fmt.Errorf("verificar activos asignados: %w", err)
	}
	for _, a := range list {
		if a != nil && a.AssignedTo == id {
			return fmt.Errorf("%w: el empleado tiene el activo %s asignado", domain.ErrConflict, a.SerialNumber)
		}
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}
	s.committed("delete_employee", id)
	return nil
}

// IsInlinePayload informa si v es una imagen embebida (data URI) en lugar de una URL.
func IsInlinePayload(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(strings.ToLower(v)), "data:")
}

func applyEmployeePatch(e *entity.Employee, p EmployeePatch) {
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Department != nil {
		e.Department = strings.TrimSpace(*p.Department)
	}
	if p.JobTitle != nil {
		e.JobTitle = strings.TrimSpace(*p.JobTitle)
	}
	if p.AvatarURL != nil {
		e.AvatarURL = strings.TrimSpace(*p.AvatarURL)
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Active != nil {
		e.Active = *p.Active
	}
}

func validateEmployee(e *entity.Employee) error {
	if e.Name == "" {
		return fmt.Errorf("%w: el nombre es requerido", domain.ErrInvalidInput)
	}
	if !govalidator.IsEmail(e.Email) {
		return fmt.Errorf("%w: email %q", domain.ErrInvalidInput, e.Email)
	}
	if !entity.ValidRole(e.Role) {
		return fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, e.Role)
	}
	return nil
}
