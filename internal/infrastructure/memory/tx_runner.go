package memory

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// txRunner acumula las escrituras de fn y las aplica juntas bajo el lock del store.
// Si fn falla o alguna restricción no se cumple, no se aplica nada.
type txRunner struct{ s *Store }

// RunAssetTx implementa repository.TxRunner.
func (t *txRunner) RunAssetTx(ctx context.Context, fn func(assets repository.AssetRepository, activity repository.ActivityRepository) error) error {
	tx := &pendingTx{base: &assetRepo{s: t.s}, assets: make(map[string]entity.Asset)}
	if err := fn(&txAssetRepo{tx: tx}, &txActivityRepo{tx: tx}); err != nil {
		return err
	}
	return t.s.commit(tx)
}

type pendingTx struct {
	base     *assetRepo
	assets   map[string]entity.Asset
	creates  map[string]bool
	activity []entity.Activity
}

func (s *Store) commit(tx *pendingTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range tx.assets {
		_, exists := s.assets[id]
		if !exists && !tx.creates[id] {
			return domain.ErrNotFound
		}
		if err := s.checkAssetLocked(&a); err != nil {
			return err
		}
	}
	for id, a := range tx.assets {
		s.assets[id] = cloneAsset(a)
	}
	s.activity = append(s.activity, tx.activity...)
	return nil
}

type txAssetRepo struct{ tx *pendingTx }

func (r *txAssetRepo) Create(_ context.Context, a *entity.Asset) error {
	if r.tx.creates == nil {
		r.tx.creates = make(map[string]bool)
	}
	r.tx.creates[a.ID] = true
	r.tx.assets[a.ID] = cloneAsset(*a)
	return nil
}

func (r *txAssetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	if a, ok := r.tx.assets[id]; ok {
		a = cloneAsset(a)
		return &a, nil
	}
	return r.tx.base.GetByID(ctx, id)
}

func (r *txAssetRepo) Update(_ context.Context, a *entity.Asset) error {
	r.tx.assets[a.ID] = cloneAsset(*a)
	return nil
}

func (r *txAssetRepo) List(ctx context.Context) ([]*entity.Asset, error) {
	list, err := r.tx.base.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(list))
	for i, a := range list {
		if p, ok := r.tx.assets[a.ID]; ok {
			p = cloneAsset(p)
			list[i] = &p
		}
		seen[a.ID] = true
	}
	for id, a := range r.tx.assets {
		if !seen[id] {
			a = cloneAsset(a)
			list = append(list, &a)
		}
	}
	return list, nil
}

func (r *txAssetRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	list, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range list {
		if a.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

type txActivityRepo struct{ tx *pendingTx }

func (r *txActivityRepo) Create(_ context.Context, a *entity.Activity) error {
	r.tx.activity = append(r.tx.activity, *a)
	return nil
}

func (r *txActivityRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Activity, error) {
	return (&activityRepo{s: r.tx.base.s}).ListRecent(ctx, limit)
}
