package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

func seedCompany(t *testing.T, repos repository.Set, id string) {
	t.Helper()
	require.NoError(t, repos.Companies.Create(context.Background(), &entity.Company{ID: id, Name: "Empresa " + id}))
}

func newAsset(id, tag, company string) *entity.Asset {
	return &entity.Asset{
		ID: id, SerialNumber: "SN-" + id, TagNo: tag, Category: entity.CategoryLaptop,
		CompanyID: company, Brand: "Dell", Model: "XPS", AssetValue: decimal.NewFromInt(1000),
		Status: entity.AssetStatusAvailable, CreatedAt: time.Now(),
	}
}

func TestAssetRepo_PlacaUnicaSinMayusculas(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedCompany(t, repos, "c1")

	require.NoError(t, repos.Assets.Create(ctx, newAsset("a1", "TAG-001", "c1")))
	err := repos.Assets.Create(ctx, newAsset("a2", "tag-001", "c1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTag)
}

func TestAssetRepo_EmpresaInexistente(t *testing.T) {
	repos := New().Repositories()
	err := repos.Assets.Create(context.Background(), newAsset("a1", "T1", "nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssetRepo_CopiasIndependientes(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedCompany(t, repos, "c1")
	a := newAsset("a1", "T1", "c1")
	a.History = []entity.Assignment{{AssignedTo: "e1", Status: entity.AssetStatusInUse}}
	require.NoError(t, repos.Assets.Create(ctx, a))

	a.History[0].AssignedTo = "mutado"
	got, err := repos.Assets.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.History[0].AssignedTo)
}

func TestCompanyRepo_DeleteConActivos(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedCompany(t, repos, "c1")
	require.NoError(t, repos.Assets.Create(ctx, newAsset("a1", "T1", "c1")))

	assert.ErrorIs(t, repos.Companies.Delete(ctx, "c1"), domain.ErrCompanyInUse)
	assert.ErrorIs(t, repos.Companies.Delete(ctx, "otra"), domain.ErrNotFound)
}

func TestCredentialRepo_EmailDuplicado(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	require.NoError(t, repos.Credentials.Create(ctx, &entity.Credential{UID: "u1", Email: "ana@example.com"}))
	err := repos.Credentials.Create(ctx, &entity.Credential{UID: "u2", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	got, err := repos.Credentials.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UID)
}

func TestActivityRepo_ListRecentOrdenYLimite(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, repos.Activity.Create(ctx, &entity.Activity{ID: string(rune('a' + i)), Date: base.Add(time.Duration(i) * time.Hour)}))
	}
	list, err := repos.Activity.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d", list[0].ID)
	assert.Equal(t, "c", list[1].ID)
}

func TestTxRunner_ConfirmaAmbasEscrituras(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedCompany(t, repos, "c1")
	require.NoError(t, repos.Assets.Create(ctx, newAsset("a1", "T1", "c1")))

	err := repos.Tx.RunAssetTx(ctx, func(assets repository.AssetRepository, activity repository.ActivityRepository) error {
		a, err := assets.GetByID(ctx, "a1")
		require.NoError(t, err)
		a.AssignedTo = "e1"
		a.Status = entity.AssetStatusInUse
		if err := assets.Update(ctx, a); err != nil {
			return err
		}
		return activity.Create(ctx, &entity.Activity{ID: "x", AssetID: "a1", Action: entity.ActivityAssigned, Date: time.Now()})
	})
	require.NoError(t, err)

	got, _ := repos.Assets.GetByID(ctx, "a1")
	assert.Equal(t, "e1", got.AssignedTo)
	list, _ := repos.Activity.ListRecent(ctx, 10)
	assert.Len(t, list, 1)
}

func TestTxRunner_ErrorNoAplicaNada(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedCompany(t, repos, "c1")
	require.NoError(t, repos.Assets.Create(ctx, newAsset("a1", "T1", "c1")))
	boom := errors.New("boom")

	err := repos.Tx.RunAssetTx(ctx, func(assets repository.AssetRepository, activity repository.ActivityRepository) error {
		a, _ := assets.GetByID(ctx, "a1")
		a.AssignedTo = "e1"
		_ = assets.Update(ctx, a)
		_ = activity.Create(ctx, &entity.Activity{ID: "x"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := repos.Assets.GetByID(ctx, "a1")
	assert.Empty(t, got.AssignedTo)
	list, _ := repos.Activity.ListRecent(ctx, 10)
	assert.Empty(t, list)
}

func TestTxRunner_RestriccionAlConfirmar(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	seedCompany(t, repos, "c1")
	require.NoError(t, repos.Assets.Create(ctx, newAsset("a1", "T1", "c1")))
	require.NoError(t, repos.Assets.Create(ctx, newAsset("a2", "T2", "c1")))

	err := repos.Tx.RunAssetTx(ctx, func(assets repository.AssetRepository, activity repository.ActivityRepository) error {
		a, _ := assets.GetByID(ctx, "a2")
		a.TagNo = "t1"
		if err := assets.Update(ctx, a); err != nil {
			return err
		}
		return activity.Create(ctx, &entity.Activity{ID: "x"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateTag)
	list, _ := repos.Activity.ListRecent(ctx, 10)
	assert.Empty(t, list)
}
