package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Activos-api/internal/application/catalog"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// AssetStore operaciones de activos de la capa de datos. Lo implementa *catalog.Store.
type AssetStore interface {
	Assets(ctx context.Context) []entity.Asset
	AssetByID(ctx context.Context, id string) *entity.Asset
	RecentActivity(ctx context.Context) []entity.Activity
	AddAsset(ctx context.Context, in catalog.NewAsset) (*entity.Asset, error)
	UpdateAsset(ctx context.Context, id string, patch catalog.AssetPatch) (*entity.Asset, error)
	AssignAsset(ctx context.Context, id, employeeID, notes string) (*entity.Asset, error)
	DecommissionAsset(ctx context.Context, id string) (*entity.Asset, error)
}

// AssetFilter filtros opcionales del listado.
type AssetFilter struct {
	Status     string
	Category   string
	CompanyID  string
	AssignedTo string
	// Query busca en serie, placa, marca y modelo (sin distinguir mayúsculas).
	Query string
}

// AssetUseCase casos de uso de activos y actividad.
type AssetUseCase struct {
	store AssetStore
}

// NewAssetUseCase construye el caso de uso.
func NewAssetUseCase(store AssetStore) *AssetUseCase {
	return &AssetUseCase{store: store}
}

// Create registra un activo.
func (uc *AssetUseCase) Create(ctx context.Context, in dto.CreateAssetRequest) (*dto.AssetResponse, error) {
	purchase, err := parseDate("purchase_date", in.PurchaseDate)
	if err != nil {
		return nil, err
	}
	a, err := uc.store.AddAsset(ctx, catalog.NewAsset{
		SerialNumber: in.SerialNumber,
		TagNo:        in.TagNo,
		Category:     in.Category,
		CompanyID:    in.CompanyID,
		Brand:        in.Brand,
		Model:        in.Model,
		PurchaseDate: purchase,
		AssetValue:   in.AssetValue,
		PhotoURL:     in.PhotoURL,
	})
	if err != nil {
		return nil, err
	}
	return ToAssetResponse(a), nil
}

// GetByID obtiene un activo. Devuelve domain.ErrNotFound si no existe.
func (uc *AssetUseCase) GetByID(ctx context.Context, id string) (*dto.AssetResponse, error) {
	a := uc.store.AssetByID(ctx, id)
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return ToAssetResponse(a), nil
}

// List lista activos aplicando los filtros sobre la colección cacheada.
func (uc *AssetUseCase) List(ctx context.Context, f AssetFilter) *dto.AssetListResponse {
	list := uc.store.Assets(ctx)
	q := strings.ToLower(strings.TrimSpace(f.Query))
	items := make([]dto.AssetResponse, 0, len(list))
	for i := range list {
		a := &list[i]
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.CompanyID != "" && a.CompanyID != f.CompanyID {
			continue
		}
		if f.AssignedTo != "" && a.AssignedTo != f.AssignedTo {
			continue
		}
		if q != "" && !matchesQuery(a, q) {
			continue
		}
		items = append(items, *ToAssetResponse(a))
	}
	return &dto.AssetListResponse{Items: items, Total: len(items)}
}

// Update aplica cambios parciales.
func (uc *AssetUseCase) Update(ctx context.Context, id string, in dto.UpdateAssetRequest) (*dto.AssetResponse, error) {
	patch := catalog.AssetPatch{
		SerialNumber: in.SerialNumber,
		TagNo:        in.TagNo,
		Category:     in.Category,
		CompanyID:    in.CompanyID,
		Brand:        in.Brand,
		Model:        in.Model,
		AssetValue:   in.AssetValue,
		Status:       in.Status,
		AssignedTo:   in.AssignedTo,
		PhotoURL:     in.PhotoURL,
		Notes:        in.Notes,
	}
	if in.PurchaseDate != nil {
		d, err := parseDate("purchase_date", *in.PurchaseDate)
		if err != nil {
			return nil, err
		}
		patch.PurchaseDate = &d
	}
	a, err := uc.store.UpdateAsset(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return ToAssetResponse(a), nil
}

// Assign asigna el activo a un empleado.
func (uc *AssetUseCase) Assign(ctx context.Context, id string, in dto.AssignAssetRequest) (*dto.AssetResponse, error) {
	a, err := uc.store.AssignAsset(ctx, id, in.EmployeeID, in.Notes)
	if err != nil {
		return nil, err
	}
	return ToAssetResponse(a), nil
}

// Decommission da de baja el activo.
func (uc *AssetUseCase) Decommission(ctx context.Context, id string) (*dto.AssetResponse, error) {
	a, err := uc.store.DecommissionAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToAssetResponse(a), nil
}

// RecentActivity devuelve la ventana de actividad reciente.
func (uc *AssetUseCase) RecentActivity(ctx context.Context) []dto.ActivityResponse {
	return ToActivityResponses(uc.store.RecentActivity(ctx))
}

func matchesQuery(a *entity.Asset, q string) bool {
	for _, field := range []string{a.SerialNumber, a.TagNo, a.Brand, a.Model} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(entity.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entity.DateLayout)
}
