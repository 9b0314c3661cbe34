package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

type fakeCatalog struct {
	companies []entity.Company
	employees []entity.Employee
	assets    []entity.Asset
	activity  []entity.Activity
}

func (f *fakeCatalog) Companies(context.Context) []entity.Company       { return f.companies }
func (f *fakeCatalog) Employees(context.Context) []entity.Employee      { return f.employees }
func (f *fakeCatalog) Assets(context.Context) []entity.Asset            { return f.assets }
func (f *fakeCatalog) RecentActivity(context.Context) []entity.Activity { return f.activity }

func TestGetSummary(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return now.AddDate(0, 0, d) }
	cat := &fakeCatalog{
		companies: []entity.Company{{ID: "c1"}, {ID: "c2"}},
		employees: []entity.Employee{{ID: "e1", Active: true}, {ID: "e2", Active: true}, {ID: "e3"}},
		assets: []entity.Asset{
			{Category: entity.CategoryLaptop, Status: entity.AssetStatusInUse, AssetValue: decimal.RequireFromString("1200.50"), WarrantyExpiry: day(10)},
			{Category: entity.CategoryLaptop, Status: entity.AssetStatusAvailable, AssetValue: decimal.RequireFromString("800"), WarrantyExpiry: day(365)},
			{Category: entity.CategoryPhone, Status: entity.AssetStatusInRepair, AssetValue: decimal.RequireFromString("300.25"), WarrantyExpiry: day(-1)},
			{Category: entity.CategoryPhone, Status: entity.AssetStatusDecommissioned, AssetValue: decimal.RequireFromString("999"), WarrantyExpiry: day(5)},
		},
		activity: []entity.Activity{{ID: "a1", Action: entity.ActivityAssigned, Date: day(-1)}},
	}
	uc := NewDashboardUseCase(cat)
	uc.now = func() time.Time { return now }

	got, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalAssets)
	assert.Equal(t, 1, got.AssignedAssets)
	assert.Equal(t, map[string]int{
		entity.AssetStatusAvailable:      1,
		entity.AssetStatusInUse:          1,
		entity.AssetStatusInRepair:       1,
		entity.AssetStatusDecommissioned: 1,
	}, got.ByStatus)
	assert.Equal(t, map[string]int{entity.CategoryLaptop: 2, entity.CategoryPhone: 2}, got.ByCategory)
	assert.True(t, decimal.RequireFromString("2300.75").Equal(got.TotalValue), "excluye dados de baja: %s", got.TotalValue)
	assert.Equal(t, 1, got.WarrantiesExpiring, "solo vigentes, no vencidas ni dadas de baja")
	assert.Equal(t, 3, got.Employees)
	assert.Equal(t, 2, got.ActiveUsers)
	assert.Equal(t, 1, got.PendingUsers)
	assert.Equal(t, 2, got.Companies)
	require.Len(t, got.RecentActivity, 1)
	assert.Equal(t, "a1", got.RecentActivity[0].ID)
}

func TestGetSummary_CatalogoVacio(t *testing.T) {
	got, err := NewDashboardUseCase(&fakeCatalog{}).GetSummary(context.Background())
	require.NoError(t, err)

	assert.Zero(t, got.TotalAssets)
	assert.Len(t, got.ByStatus, 4, "todos los estados aparecen aunque estén en cero")
	assert.True(t, got.TotalValue.IsZero())
	assert.NotNil(t, got.RecentActivity)
}

func TestGetSummary_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDashboardUseCase(&fakeCatalog{}).GetSummary(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
