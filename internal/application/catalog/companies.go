package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// AddCompany crea una empresa.
func (s *Store) AddCompany(ctx context.Context, name string) (*entity.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la empresa es requerido", domain.ErrInvalidInput)
	}
	now := s.now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}
	s.committed("add_company", company.ID)
	return company, nil
}

// UpdateCompany renombra una empresa existente.
func (s *Store) UpdateCompany(ctx context.Context, id, name string) (*entity.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la empresa es requerido", domain.ErrInvalidInput)
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	company.Name = name
	company.UpdatedAt = s.now()
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	s.committed("update_company", id)
	return company, nil
}

// DeleteCompany elimina la empresa. Devuelve domain.ErrCompanyInUse si algún activo la
// referencia; en ese caso no se escribe nada.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	n, err := s.assets.CountByCompany(ctx, id)
	if err != nil {
		return fmt.Errorf("verificar uso de la empresa: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %d activo(s)", domain.ErrCompanyInUse, n)
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	s.committed("delete_company", id)
	return nil
}
