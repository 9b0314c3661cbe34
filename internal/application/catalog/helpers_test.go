package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
)

var errBoom = errors.New("store remoto no disponible")

// flakyCompanies envuelve el repositorio real para contar lecturas e inyectar fallos.
type flakyCompanies struct {
	repository.CompanyRepository
	lists      atomic.Int32
	failReads  atomic.Bool
	failWrites atomic.Bool
	started    chan struct{} // opcional: avisa que List empezó
	release    chan struct{} // opcional: List espera hasta que se cierre
}

func (f *flakyCompanies) List(ctx context.Context) ([]*entity.Company, error) {
	f.lists.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}
	if f.failReads.Load() {
		return nil, errBoom
	}
	return f.CompanyRepository.List(ctx)
}

func (f *flakyCompanies) Create(ctx context.Context, c *entity.Company) error {
	if f.failWrites.Load() {
		return errBoom
	}
	return f.CompanyRepository.Create(ctx, c)
}

type flakyAssets struct {
	repository.AssetRepository
	failWrites atomic.Bool
}

func (f *flakyAssets) Update(ctx context.Context, a *entity.Asset) error {
	if f.failWrites.Load() {
		return errBoom
	}
	return f.AssetRepository.Update(ctx, a)
}

type countingNotifier struct{ n atomic.Uint64 }

func (c *countingNotifier) Bump() uint64 { return c.n.Add(1) }

type testEnv struct {
	store     *Store
	companies *flakyCompanies
	assets    *flakyAssets
	notifier  *countingNotifier
	repos     repository.Set
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := memory.New().Repositories()
	env := &testEnv{
		companies: &flakyCompanies{CompanyRepository: repos.Companies},
		assets:    &flakyAssets{AssetRepository: repos.Assets},
		notifier:  &countingNotifier{},
		repos:     repos,
	}
	env.store = NewStore(StoreDeps{
		Companies: env.companies,
		Employees: repos.Employees,
		Assets:    env.assets,
		Activity:  repos.Activity,
		Tx:        repos.Tx,
		Notifier:  env.notifier,
	})
	// Reloj monotónico para que el orden de la actividad sea determinista.
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	env.store.now = func() time.Time { return base.Add(time.Duration(tick.Add(1)) * time.Second) }
	return env
}

func (e *testEnv) company(t *testing.T, name string) *entity.Company {
	t.Helper()
	c, err := e.store.AddCompany(context.Background(), name)
	require.NoError(t, err)
	return c
}

func (e *testEnv) employee(t *testing.T, name string) *entity.Employee {
	t.Helper()
	emp, err := e.store.CreateEmployee(context.Background(), NewEmployee{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return emp
}

func (e *testEnv) asset(t *testing.T, companyID, tag string) *entity.Asset {
	t.Helper()
	a, err := e.store.AddAsset(context.Background(), newAssetInput(companyID, tag))
	require.NoError(t, err)
	return a
}

func newAssetInput(companyID, tag string) NewAsset {
	return NewAsset{
		SerialNumber: "SN-" + tag,
		TagNo:        tag,
		Category:     entity.CategoryLaptop,
		CompanyID:    companyID,
		Brand:        "Dell",
		Model:        "Latitude",
		PurchaseDate: time.Date(2024, 2, 29, 15, 30, 0, 0, time.UTC),
		AssetValue:   decimal.RequireFromString("1499.99"),
	}
}
