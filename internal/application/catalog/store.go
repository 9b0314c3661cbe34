// Package catalog es la capa de acceso a datos y caché: media todas las lecturas y
// escrituras de empresas, empleados, activos y actividad reciente entre la API y el store.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// DefaultActivityWindow cantidad de registros de actividad reciente que se exponen.
const DefaultActivityWindow = 5

// Notifier recibe un aviso después de cada escritura confirmada (ver refresh.Signal).
type Notifier interface {
	Bump() uint64
}

// StoreDeps dependencias del Store.
type StoreDeps struct {
	Companies repository.CompanyRepository
	Employees repository.EmployeeRepository
	Assets    repository.AssetRepository
	Activity  repository.ActivityRepository
	// Tx es opcional; sin él la escritura del activo y de su actividad van por separado.
	Tx       repository.TxRunner
	Cache    *Cache
	Notifier Notifier
	Logger   zerolog.Logger
	// ActivityWindow <= 0 usa DefaultActivityWindow.
	ActivityWindow int
}

// Store expone lecturas cacheadas y mutaciones que escriben en el store remoto y luego
// invalidan el caché completo. Es seguro para uso concurrente.
type Store struct {
	companies repository.CompanyRepository
	employees repository.EmployeeRepository
	assets    repository.AssetRepository
	activity  repository.ActivityRepository
	tx        repository.TxRunner
	cache     *Cache
	notifier  Notifier
	log       zerolog.Logger
	window    int
	now       func() time.Time
}

// NewStore construye la capa de datos. Si deps.Cache es nil se crea uno propio.
func NewStore(deps StoreDeps) *Store {
	cache := deps.Cache
	if cache == nil {
		cache = NewCache()
	}
	window := deps.ActivityWindow
	if window <= 0 {
		window = DefaultActivityWindow
	}
	return &Store{
		companies: deps.Companies,
		employees: deps.Employees,
		assets:    deps.Assets,
		activity:  deps.Activity,
		tx:        deps.Tx,
		cache:     cache,
		notifier:  deps.Notifier,
		log:       deps.Logger.With().Str("component", "catalog").Logger(),
		window:    window,
		now:       time.Now,
	}
}

// ClearCache invalida todos los slots del caché.
func (s *Store) ClearCache() {
	s.cache.Clear()
}

// Companies devuelve todas las empresas. Un fallo de lectura degrada a colección vacía.
func (s *Store) Companies(ctx context.Context) []entity.Company {
	items, err := load(ctx, s.cache, SlotCompanies, func(ctx context.Context) ([]entity.Company, error) {
		list, err := s.companies.List(ctx)
		if err != nil {
			return nil, err
		}
		return derefAll(list), nil
	})
	if err != nil {
		s.fetchFailed(SlotCompanies, err)
		return []entity.Company{}
	}
	return slices.Clone(items)
}

// Employees devuelve todos los perfiles. Un fallo de lectura degrada a colección vacía.
func (s *Store) Employees(ctx context.Context) []entity.Employee {
	items, err := load(ctx, s.cache, SlotEmployees, func(ctx context.Context) ([]entity.Employee, error) {
		list, err := s.employees.List(ctx)
		if err != nil {
			return nil, err
		}
		return derefAll(list), nil
	})
	if err != nil {
		s.fetchFailed(SlotEmployees, err)
		return []entity.Employee{}
	}
	return slices.Clone(items)
}

// Assets devuelve todos los activos. Un fallo de lectura degrada a colección vacía.
func (s *Store) Assets(ctx context.Context) []entity.Asset {
	items, err := load(ctx, s.cache, SlotAssets, func(ctx context.Context) ([]entity.Asset, error) {
		list, err := s.assets.List(ctx)
		if err != nil {
			return nil, err
		}
		return derefAll(list), nil
	})
	if err != nil {
		s.fetchFailed(SlotAssets, err)
		return []entity.Asset{}
	}
	out := make([]entity.Asset, len(items))
	for i := range items {
		out[i] = cloneAsset(items[i])
	}
	return out
}

// RecentActivity devuelve la ventana de actividad reciente, más reciente primero.
func (s *Store) RecentActivity(ctx context.Context) []entity.Activity {
	items, err := load(ctx, s.cache, SlotActivity, func(ctx context.Context) ([]entity.Activity, error) {
		list, err := s.activity.ListRecent(ctx, s.window)
		if err != nil {
			return nil, err
		}
		out := derefAll(list)
		slices.SortStableFunc(out, func(a, b entity.Activity) int { return b.Date.Compare(a.Date) })
		if len(out) > s.window {
			out = out[:s.window]
		}
		return out, nil
	})
	if err != nil {
		s.fetchFailed(SlotActivity, err)
		return []entity.Activity{}
	}
	return slices.Clone(items)
}

// CompanyByID busca en la colección cacheada. Devuelve nil si no existe.
func (s *Store) CompanyByID(ctx context.Context, id string) *entity.Company {
	for _, c := range s.Companies(ctx) {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

// EmployeeByID busca en la colección cacheada. Devuelve nil si no existe.
func (s *Store) EmployeeByID(ctx context.Context, id string) *entity.Employee {
	for _, e := range s.Employees(ctx) {
		if e.ID == id {
			return &e
		}
	}
	return nil
}

// AssetByID busca en la colección cacheada. Devuelve nil si no existe.
func (s *Store) AssetByID(ctx context.Context, id string) *entity.Asset {
	for _, a := range s.Assets(ctx) {
		if a.ID == id {
			return &a
		}
	}
	return nil
}

// FetchEmployee lee un perfil directamente del store, sin pasar por el caché.
// A diferencia de las lecturas cacheadas, los errores se propagan: la reconciliación de
// sesión necesita distinguir "no existe" (nil, nil) de un fallo transitorio.
func (s *Store) FetchEmployee(ctx context.Context, id string) (*entity.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch employee %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) fetchFailed(slot string, err error) {
	s.log.Warn().Err(err).Str("collection", slot).Msg("lectura fallida, se devuelve colección vacía")
}

// committed se llama solo después de una escritura exitosa: invalida y avisa, en ese orden.
func (s *Store) committed(op, id string) {
	s.cache.Clear()
	var version uint64
	if s.notifier != nil {
		version = s.notifier.Bump()
	}
	s.log.Debug().Str("op", op).Str("id", id).Uint64("version", version).Msg("escritura confirmada")
}

func derefAll[T any](list []*T) []T {
	out := make([]T, 0, len(list))
	for _, p := range list {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func cloneAsset(a entity.Asset) entity.Asset {
	a.History = slices.Clone(a.History)
	return a
}
