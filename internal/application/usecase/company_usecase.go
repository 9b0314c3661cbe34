package usecase

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// CompanyStore operaciones de empresas de la capa de datos. Lo implementa *catalog.Store.
type CompanyStore interface {
	Companies(ctx context.Context) []entity.Company
	CompanyByID(ctx context.Context, id string) *entity.Company
	AddCompany(ctx context.Context, name string) (*entity.Company, error)
	UpdateCompany(ctx context.Context, id, name string) (*entity.Company, error)
	DeleteCompany(ctx context.Context, id string) error
}

// CompanyUseCase casos de uso de empresas.
type CompanyUseCase struct {
	store CompanyStore
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(store CompanyStore) *CompanyUseCase {
	return &CompanyUseCase{store: store}
}

// Create crea una empresa.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CompanyRequest) (*dto.CompanyResponse, error) {
	c, err := uc.store.AddCompany(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	return ToCompanyResponse(c), nil
}

// GetByID obtiene una empresa. Devuelve domain.ErrNotFound si no existe.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	c := uc.store.CompanyByID(ctx, id)
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return ToCompanyResponse(c), nil
}

// List lista todas las empresas.
func (uc *CompanyUseCase) List(ctx context.Context) *dto.CompanyListResponse {
	list := uc.store.Companies(ctx)
	items := make([]dto.CompanyResponse, 0, len(list))
	for i := range list {
		items = append(items, *ToCompanyResponse(&list[i]))
	}
	return &dto.CompanyListResponse{Items: items, Total: len(items)}
}

// Update renombra una empresa.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.CompanyRequest) (*dto.CompanyResponse, error) {
	c, err := uc.store.UpdateCompany(ctx, id, in.Name)
	if err != nil {
		return nil, err
	}
	return ToCompanyResponse(c), nil
}

// Delete elimina una empresa sin activos asociados.
func (uc *CompanyUseCase) Delete(ctx context.Context, id string) error {
	return uc.store.DeleteCompany(ctx, id)
}
