package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// NewAsset datos para registrar un activo. Estado, historial, asignación y garantía
// los calcula el Store.
type NewAsset struct {
	SerialNumber string
	TagNo        string
	Category     string
	CompanyID    string
	Brand        string
	Model        string
	PurchaseDate time.Time
	AssetValue   decimal.Decimal
	PhotoURL     string
}

// AssetPatch actualización parcial de un activo (nil = sin cambio).
// Notes solo se usa si cambia la asignación.
type AssetPatch struct {
	SerialNumber *string
	TagNo        *string
	Category     *string
	CompanyID    *string
	Brand        *string
	Model        *string
	PurchaseDate *time.Time
	AssetValue   *decimal.Decimal
	Status       *string
	AssignedTo   *string
	PhotoURL     *string
	Notes        string
}

// AddAsset registra un activo disponible, sin asignar, con garantía a dos años.
// Devuelve domain.ErrDuplicateTag si la placa ya existe.
func (s *Store) AddAsset(ctx context.Context, in NewAsset) (*entity.Asset, error) {
	if err := validateNewAsset(in); err != nil {
		return nil, err
	}
	if err := s.requireCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}
	if err := s.ensureTagAvailable(ctx, in.TagNo, ""); err != nil {
		return nil, err
	}
	now := s.now()
	purchase := truncateDay(in.PurchaseDate)
	asset := &entity.Asset{
		ID:             uuid.New().String(),
		SerialNumber:   strings.TrimSpace(in.SerialNumber),
		TagNo:          strings.TrimSpace(in.TagNo),
		Category:       in.Category,
		CompanyID:      in.CompanyID,
		Brand:          strings.TrimSpace(in.Brand),
		Model:          strings.TrimSpace(in.Model),
		PurchaseDate:   purchase,
		WarrantyExpiry: entity.WarrantyFrom(purchase),
		AssetValue:     in.AssetValue,
		Status:         entity.AssetStatusAvailable,
		AssignedTo:     "",
		PhotoURL:       in.PhotoURL,
		History:        []entity.Assignment{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	s.committed("add_asset", asset.ID)
	return asset, nil
}

// UpdateAsset aplica el patch sobre el valor almacenado. Si cambia AssignedTo se agrega
// exactamente una entrada al historial y un registro de actividad; re-guardar sin cambiar
// la asignación no agrega nada. Estado y asignación se mueven juntos: solo un activo
// asignado está "In Use", y cambiar el estado de un activo asignado lo devuelve.
func (s *Store) UpdateAsset(ctx context.Context, id string, patch AssetPatch) (*entity.Asset, error) {
	if err := validateAssetPatch(patch); err != nil {
		return nil, err
	}
	prior, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, domain.ErrNotFound
	}

	// Salir de "In Use" (baja, reparación o disponible) libera el activo.
	if patch.Status != nil && *patch.Status != entity.AssetStatusInUse &&
		(patch.AssignedTo == nil || *patch.Status == entity.AssetStatusDecommissioned) {
		empty := ""
		patch.AssignedTo = &empty
	}

	if patch.TagNo != nil && entity.FoldTag(*patch.TagNo) != entity.FoldTag(prior.TagNo) {
		if err := s.ensureTagAvailable(ctx, *patch.TagNo, id); err != nil {
			return nil, err
		}
	}
	if patch.CompanyID != nil && *patch.CompanyID != prior.CompanyID {
		if err := s.requireCompany(ctx, *patch.CompanyID); err != nil {
			return nil, err
		}
	}

	updated := cloneAsset(*prior)
	applyAssetPatch(&updated, patch)
	updated.UpdatedAt = s.now()

	var record *entity.Activity
	if updated.AssignedTo != prior.AssignedTo {
		record, err = s.reassign(ctx, prior, &updated, patch)
		if err != nil {
			return nil, err
		}
	}
	if patch.Status != nil && (updated.Status == entity.AssetStatusInUse) != (updated.AssignedTo != "") {
		if updated.AssignedTo == "" {
			return nil, fmt.Errorf("%w: un activo en uso debe tener un empleado asignado", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: un activo asignado debe quedar en uso", domain.ErrInvalidInput)
	}

	if err := s.writeAsset(ctx, &updated, record); err != nil {
		return nil, err
	}
	s.committed("update_asset", id)
	return &updated, nil
}

// AssignAsset asigna el activo a un empleado y lo pasa a "In Use".
func (s *Store) AssignAsset(ctx context.Context, id, employeeID, notes string) (*entity.Asset, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, fmt.Errorf("%w: debe seleccionar un empleado", domain.ErrInvalidInput)
	}
	status := entity.AssetStatusInUse
	return s.UpdateAsset(ctx, id, AssetPatch{AssignedTo: &employeeID, Status: &status, Notes: notes})
}

// DecommissionAsset da de baja el activo: estado Decommissioned y sin asignación.
func (s *Store) DecommissionAsset(ctx context.Context, id string) (*entity.Asset, error) {
	status := entity.AssetStatusDecommissioned
	return s.UpdateAsset(ctx, id, AssetPatch{Status: &status})
}

// reassign ajusta estado e historial de updated y construye el registro de actividad.
func (s *Store) reassign(ctx context.Context, prior, updated *entity.Asset, patch AssetPatch) (*entity.Activity, error) {
	now := updated.UpdatedAt
	record := &entity.Activity{
		ID:          uuid.New().String(),
		AssetID:     prior.ID,
		AssetSerial: updated.SerialNumber,
		Date:        now,
	}
	notes := strings.TrimSpace(patch.Notes)

	if updated.AssignedTo != "" {
		if prior.Status == entity.AssetStatusDecommissioned || updated.Status == entity.AssetStatusDecommissioned {
			return nil, fmt.Errorf("%w: un activo dado de baja no puede asignarse", domain.ErrInvalidInput)
		}
		employee, err := s.employees.GetByID(ctx, updated.AssignedTo)
		if err != nil {
			return nil, err
		}
		if employee == nil {
			return nil, fmt.Errorf("%w: empleado %s", domain.ErrNotFound, updated.AssignedTo)
		}
		if patch.Status == nil {
			updated.Status = entity.AssetStatusInUse
		}
		if updated.Status != entity.AssetStatusInUse {
			return nil, fmt.Errorf("%w: un activo asignado debe quedar en uso", domain.ErrInvalidInput)
		}
		if notes == "" {
			notes = entity.DefaultAssignmentNotes
		}
		record.EmployeeID = employee.ID
		record.EmployeeName = employee.Name
		record.Action = entity.ActivityAssigned
	} else {
		if patch.Status == nil && updated.Status == entity.AssetStatusInUse {
			updated.Status = entity.AssetStatusAvailable
		}
		record.EmployeeID = prior.AssignedTo
		if previous, err := s.employees.GetByID(ctx, prior.AssignedTo); err == nil && previous != nil {
			record.EmployeeName = previous.Name
		}
		record.Action = entity.ActivityReturned
	}

	updated.History = append(updated.History, entity.Assignment{
		Date:       now,
		AssignedTo: updated.AssignedTo,
		Status:     updated.Status,
		Notes:      notes,
	})
	return record, nil
}

func (s *Store) writeAsset(ctx context.Context, asset *entity.Asset, record *entity.Activity) error {
	if record == nil {
		return s.assets.Update(ctx, asset)
	}
	if s.tx != nil {
		return s.tx.RunAssetTx(ctx, func(assets repository.AssetRepository, activity repository.ActivityRepository) error {
			if err := assets.Update(ctx, asset); err != nil {
				return err
			}
			return activity.Create(ctx, record)
		})
	}
	if err := s.assets.Update(ctx, asset); err != nil {
		return err
	}
	if err := s.activity.Create(ctx, record); err != nil {
		// El activo ya quedó escrito; el registro de actividad es derivado.
		s.log.Error().Err(err).Str("asset_id", asset.ID).Msg("no se pudo registrar la actividad")
		return nil
	}
	return nil
}

// ensureTagAvailable valida la placa contra el conjunto completo leído del store
// (no contra el caché, que puede estar degradado a vacío).
func (s *Store) ensureTagAvailable(ctx context.Context, tag, exceptID string) error {
	list, err := s.assets.List(ctx)
	if err != nil {
		return fmt.Errorf("verificar placa: %w", err)
	}
	folded := entity.FoldTag(tag)
	for _, a := range list {
		if a == nil || a.ID == exceptID {
			continue
		}
		if entity.FoldTag(a.TagNo) == folded {
			return fmt.Errorf("%w: %q ya pertenece al activo %s", domain.ErrDuplicateTag, tag, a.SerialNumber)
		}
	}
	return nil
}

func (s *Store) requireCompany(ctx context.Context, companyID string) error {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, companyID)
	}
	return nil
}

func validateNewAsset(in NewAsset) error {
	var missing []string
	for field, v := range map[string]string{
		"serial_number": in.SerialNumber,
		"tag_no":        in.TagNo,
		"category":      in.Category,
		"company_id":    in.CompanyID,
		"brand":         in.Brand,
		"model":         in.Model,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if in.PurchaseDate.IsZero() {
		missing = append(missing, "purchase_date")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: campos requeridos: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !entity.ValidCategory(in.Category) {
		return fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, in.Category)
	}
	if in.AssetValue.IsNegative() {
		return fmt.Errorf("%w: el valor del activo debe ser positivo", domain.ErrInvalidInput)
	}
	return nil
}

func validateAssetPatch(p AssetPatch) error {
	for field, v := range map[string]*string{
		"serial_number": p.SerialNumber,
		"tag_no":        p.TagNo,
		"company_id":    p.CompanyID,
		"brand":         p.Brand,
		"model":         p.Model,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s no puede quedar vacío", domain.ErrInvalidInput, field)
		}
	}
	if p.Category != nil && !entity.ValidCategory(*p.Category) {
		return fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, *p.Category)
	}
	if p.Status != nil && !entity.ValidAssetStatus(*p.Status) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *p.Status)
	}
	if p.AssetValue != nil && p.AssetValue.IsNegative() {
		return fmt.Errorf("%w: el valor del activo debe ser positivo", domain.ErrInvalidInput)
	}
	if p.PurchaseDate != nil && p.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: fecha de compra inválida", domain.ErrInvalidInput)
	}
	return nil
}

func applyAssetPatch(a *entity.Asset, p AssetPatch) {
	if p.SerialNumber != nil {
		a.SerialNumber = strings.TrimSpace(*p.SerialNumber)
	}
	if p.TagNo != nil {
		a.TagNo = strings.TrimSpace(*p.TagNo)
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.CompanyID != nil {
		a.CompanyID = *p.CompanyID
	}
	if p.Brand != nil {
		a.Brand = strings.TrimSpace(*p.Brand)
	}
	if p.Model != nil {
		a.Model = strings.TrimSpace(*p.Model)
	}
	if p.PurchaseDate != nil {
		a.PurchaseDate = truncateDay(*p.PurchaseDate)
	}
	if p.AssetValue != nil {
		a.AssetValue = *p.AssetValue
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.AssignedTo != nil {
		a.AssignedTo = strings.TrimSpace(*p.AssignedTo)
	}
	if p.PhotoURL != nil {
		a.PhotoURL = *p.PhotoURL
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
