// Package memory implementa los repositorios en memoria del proceso. Sirve como driver
// efímero (STORE_DRIVER=memory) y como backend de las pruebas de integración HTTP.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository    = (*companyRepo)(nil)
	_ repository.EmployeeRepository   = (*employeeRepo)(nil)
	_ repository.AssetRepository      = (*assetRepo)(nil)
	_ repository.ActivityRepository   = (*activityRepo)(nil)
	_ repository.CredentialRepository = (*credentialRepo)(nil)
	_ repository.TxRunner             = (*txRunner)(nil)
)

// Store guarda todas las colecciones bajo un único mutex. Las entidades se copian al
// entrar y al salir, igual que si cruzaran la red.
type Store struct {
	mu          sync.RWMutex
	companies   map[string]entity.Company
	employees   map[string]entity.Employee
	assets      map[string]entity.Asset
	activity    []entity.Activity
	credentials map[string]entity.Credential
}

// New construye un store vacío.
func New() *Store {
	return &Store{
		companies:   make(map[string]entity.Company),
		employees:   make(map[string]entity.Employee),
		assets:      make(map[string]entity.Asset),
		credentials: make(map[string]entity.Credential),
	}
}

// Repositories devuelve el conjunto de repositorios respaldados por este store.
func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Companies:   &companyRepo{s: s},
		Employees:   &employeeRepo{s: s},
		Assets:      &assetRepo{s: s},
		Activity:    &activityRepo{s: s},
		Credentials: &credentialRepo{s: s},
		Tx:          &txRunner{s: s},
	}
}

func cloneAsset(a entity.Asset) entity.Asset {
	a.History = slices.Clone(a.History)
	return a
}

// ── Companies ────────────────────────────────────────────────────────────────

type companyRepo struct{ s *Store }

func (r *companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r *companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *companyRepo) Update(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r *companyRepo) List(_ context.Context) ([]*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		list = append(list, &c)
	}
	slices.SortFunc(list, func(a, b *entity.Company) int { return strings.Compare(a.Name, b.Name) })
	return list, nil
}

func (r *companyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[id]; !ok {
		return domain.ErrNotFound
	}
	for _, a := range r.s.assets {
		if a.CompanyID == id {
			return domain.ErrCompanyInUse
		}
	}
	delete(r.s.companies, id)
	return nil
}

// ── Employees ────────────────────────────────────────────────────────────────

type employeeRepo struct{ s *Store }

func (r *employeeRepo) Create(_ context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.employees[e.ID] = *e
	return nil
}

func (r *employeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *employeeRepo) Update(_ context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.employees[e.ID] = *e
	return nil
}

func (r *employeeRepo) List(_ context.Context) ([]*entity.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		list = append(list, &e)
	}
	slices.SortFunc(list, func(a, b *entity.Employee) int { return strings.Compare(a.Name, b.Name) })
	return list, nil
}

func (r *employeeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.employees, id)
	return nil
}

// ── Assets ───────────────────────────────────────────────────────────────────

type assetRepo struct{ s *Store }

func (r *assetRepo) Create(_ context.Context, a *entity.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[a.ID]; ok {
		return domain.ErrDuplicate
	}
	if err := r.s.checkAssetLocked(a); err != nil {
		return err
	}
	r.s.assets[a.ID] = cloneAsset(*a)
	return nil
}

func (r *assetRepo) GetByID(_ context.Context, id string) (*entity.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assets[id]
	if !ok {
		return nil, nil
	}
	a = cloneAsset(a)
	return &a, nil
}

func (r *assetRepo) Update(_ context.Context, a *entity.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[a.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.s.checkAssetLocked(a); err != nil {
		return err
	}
	r.s.assets[a.ID] = cloneAsset(*a)
	return nil
}

func (r *assetRepo) List(_ context.Context) ([]*entity.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Asset, 0, len(r.s.assets))
	for _, a := range r.s.assets {
		c := cloneAsset(a)
		list = append(list, &c)
	}
	slices.SortFunc(list, func(a, b *entity.Asset) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return list, nil
}

func (r *assetRepo) CountByCompany(_ context.Context, companyID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, a := range r.s.assets {
		if a.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

// checkAssetLocked replica las restricciones de la base: placa única (plegada) y empresa
// existente.
func (s *Store) checkAssetLocked(a *entity.Asset) error {
	key := entity.FoldTag(a.TagNo)
	for id, other := range s.assets {
		if id != a.ID && entity.FoldTag(other.TagNo) == key {
			return domain.ErrDuplicateTag
		}
	}
	if _, ok := s.companies[a.CompanyID]; !ok {
		return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, a.CompanyID)
	}
	return nil
}

// ── Activity ─────────────────────────────────────────────────────────────────

type activityRepo struct{ s *Store }

func (r *activityRepo) Create(_ context.Context, a *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activity = append(r.s.activity, *a)
	return nil
}

func (r *activityRepo) ListRecent(_ context.Context, limit int) ([]*entity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sorted := slices.Clone(r.s.activity)
	slices.SortStableFunc(sorted, func(a, b entity.Activity) int { return b.Date.Compare(a.Date) })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	list := make([]*entity.Activity, len(sorted))
	for i := range sorted {
		list[i] = &sorted[i]
	}
	return list, nil
}

// ── Credentials ──────────────────────────────────────────────────────────────

type credentialRepo struct{ s *Store }

func (r *credentialRepo) Create(_ context.Context, c *entity.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.credentials {
		if strings.EqualFold(other.Email, c.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.credentials[c.UID] = *c
	return nil
}

func (r *credentialRepo) GetByEmail(_ context.Context, email string) (*entity.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.credentials {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *credentialRepo) Delete(_ context.Context, uid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.credentials[uid]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.credentials, uid)
	return nil
}
