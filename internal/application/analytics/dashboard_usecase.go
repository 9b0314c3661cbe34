// Package analytics contiene los casos de uso de resumen del inventario de activos.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// warrantyHorizon ventana para contar garantías por vencer.
const warrantyHorizon = 30 * 24 * time.Hour

// CatalogReader lecturas cacheadas de la capa de datos. Lo implementa *catalog.Store.
type CatalogReader interface {
	Companies(ctx context.Context) []entity.Company
	Employees(ctx context.Context) []entity.Employee
	Assets(ctx context.Context) []entity.Asset
	RecentActivity(ctx context.Context) []entity.Activity
}

// DashboardUseCase genera el resumen del tablero principal.
//
// Fuente de datos: las colecciones cacheadas del store. Una lectura fallida llega como
// colección vacía, así que el tablero se degrada en vez de fallar.
type DashboardUseCase struct {
	catalog CatalogReader
	now     func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(catalog CatalogReader) *DashboardUseCase {
	return &DashboardUseCase{catalog: catalog, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro lecturas en paralelo: activos, empleados, empresas y actividad reciente.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	var (
		assets    []entity.Asset
		employees []entity.Employee
		companies []entity.Company
		activity  []entity.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { assets = uc.catalog.Assets(gctx); return nil })
	g.Go(func() error { employees = uc.catalog.Employees(gctx); return nil })
	g.Go(func() error { companies = uc.catalog.Companies(gctx); return nil })
	g.Go(func() error { activity = uc.catalog.RecentActivity(gctx); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &dto.DashboardSummaryDTO{
		TotalAssets:    len(assets),
		ByStatus:       map[string]int{},
		ByCategory:     map[string]int{},
		TotalValue:     decimal.Zero,
		Employees:      len(employees),
		Companies:      len(companies),
		RecentActivity: usecase.ToActivityResponses(activity),
	}
	for _, s := range []string{
		entity.AssetStatusAvailable, entity.AssetStatusInUse,
		entity.AssetStatusInRepair, entity.AssetStatusDecommissioned,
	} {
		out.ByStatus[s] = 0
	}

	now := uc.now()
	horizon := now.Add(warrantyHorizon)
	for _, a := range assets {
		out.ByStatus[a.Status]++
		out.ByCategory[a.Category]++
		if a.Status == entity.AssetStatusDecommissioned {
			continue
		}
		out.TotalValue = out.TotalValue.Add(a.AssetValue)
		if !a.WarrantyExpiry.IsZero() && !a.WarrantyExpiry.Before(now) && a.WarrantyExpiry.Before(horizon) {
			out.WarrantiesExpiring++
		}
	}
	out.AssignedAssets = out.ByStatus[entity.AssetStatusInUse]

	for _, e := range employees {
		if e.Active {
			out.ActiveUsers++
		} else {
			out.PendingUsers++
		}
	}
	return out, nil
}
