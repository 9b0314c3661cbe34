package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

// AssetRepo implementación de AssetRepository sobre PostgreSQL (usable con pool o tx).
// El historial de asignaciones se guarda como JSONB en la misma fila.
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el adaptador de activos. Pasar pool o tx (Querier).
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

const assetColumns = `id, serial_number, tag_no, category, company_id, brand, model, purchase_date,
	warranty_expiry, asset_value, status, assigned_to, photo_url, history, created_at, updated_at`

// Create persiste un activo. Una placa repetida devuelve domain.ErrDuplicateTag.
func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	history, err := marshalHistory(a.History)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO assets (` + assetColumns + `, tag_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(ctx, query,
		a.ID, a.SerialNumber, a.TagNo, a.Category, a.CompanyID, a.Brand, a.Model, a.PurchaseDate,
		a.WarrantyExpiry, a.AssetValue, a.Status, a.AssignedTo, a.PhotoURL, history,
		a.CreatedAt, a.UpdatedAt, entity.FoldTag(a.TagNo),
	)
	if err != nil {
		return mapAssetWriteError("insert asset", err)
	}
	return nil
}

// GetByID obtiene un activo por ID.
func (r *AssetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	row := r.q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// Update reescribe el activo completo, incluido el historial.
func (r *AssetRepo) Update(ctx context.Context, a *entity.Asset) error {
	history, err := marshalHistory(a.History)
	if err != nil {
		return err
	}
	query := `
		UPDATE assets
		   SET serial_number = $2, tag_no = $3, tag_key = $4, category = $5, company_id = $6,
		       brand = $7, model = $8, purchase_date = $9, warranty_expiry = $10,
		       asset_value = $11, status = $12, assigned_to = $13, photo_url = $14,
		       history = $15, updated_at = $16
		 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, a.SerialNumber, a.TagNo, entity.FoldTag(a.TagNo), a.Category, a.CompanyID,
		a.Brand, a.Model, a.PurchaseDate, a.WarrantyExpiry,
		a.AssetValue, a.Status, a.AssignedTo, a.PhotoURL,
		history, a.UpdatedAt,
	)
	if err != nil {
		return mapAssetWriteError("update asset", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve todos los activos, más recientes primero.
func (r *AssetRepo) List(ctx context.Context) ([]*entity.Asset, error) {
	rows, err := r.q.Query(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var list []*entity.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CountByCompany cuenta los activos que referencian la empresa.
func (r *AssetRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM assets WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assets by company: %w", err)
	}
	return n, nil
}

func scanAsset(row pgxScanner) (*entity.Asset, error) {
	var (
		a       entity.Asset
		history []byte
	)
	err := row.Scan(
		&a.ID, &a.SerialNumber, &a.TagNo, &a.Category, &a.CompanyID, &a.Brand, &a.Model, &a.PurchaseDate,
		&a.WarrantyExpiry, &a.AssetValue, &a.Status, &a.AssignedTo, &a.PhotoURL, &history,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	return &a, nil
}

func marshalHistory(h []entity.Assignment) ([]byte, error) {
	if h == nil {
		h = []entity.Assignment{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return b, nil
}

func mapAssetWriteError(op string, err error) error {
	if isUniqueViolation(err) && constraintName(err) == "assets_tag_key_uq" {
		return domain.ErrDuplicateTag
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: empresa inexistente", domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
