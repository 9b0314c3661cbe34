package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAssetRequest alta de un activo. purchase_date en formato YYYY-MM-DD.
type CreateAssetRequest struct {
	SerialNumber string          `json:"serial_number" valid:"required,length(1|100)"`
	TagNo        string          `json:"tag_no" valid:"required,length(1|50)"`
	Category     string          `json:"category" valid:"required,in(Laptop|Desktop|Phone|Tablet|Other)"`
	CompanyID    string          `json:"company_id" valid:"required"`
	Brand        string          `json:"brand" valid:"required,length(1|100)"`
	Model        string          `json:"model" valid:"required,length(1|100)"`
	PurchaseDate string          `json:"purchase_date" valid:"required"`
	AssetValue   decimal.Decimal `json:"asset_value" valid:"-"`
	PhotoURL     string          `json:"photo_url" valid:"optional,url"`
}

// UpdateAssetRequest cambios parciales de un activo. Cambiar assigned_to agrega una entrada
// al historial y un registro de actividad.
type UpdateAssetRequest struct {
	SerialNumber *string          `json:"serial_number" valid:"-"`
	TagNo        *string          `json:"tag_no" valid:"-"`
	Category     *string          `json:"category" valid:"-"`
	CompanyID    *string          `json:"company_id" valid:"-"`
	Brand        *string          `json:"brand" valid:"-"`
	Model        *string          `json:"model" valid:"-"`
	PurchaseDate *string          `json:"purchase_date" valid:"-"`
	AssetValue   *decimal.Decimal `json:"asset_value" valid:"-"`
	Status       *string          `json:"status" valid:"-"`
	AssignedTo   *string          `json:"assigned_to" valid:"-"`
	PhotoURL     *string          `json:"photo_url" valid:"-"`
	Notes        string           `json:"notes" valid:"optional,length(1|500)"`
}

// AssignAssetRequest asignación de un activo a un empleado.
type AssignAssetRequest struct {
	EmployeeID string `json:"employee_id" valid:"required"`
	Notes      string `json:"notes" valid:"optional,length(1|500)"`
}

// AssignmentResponse entrada del historial.
type AssignmentResponse struct {
	Date       string `json:"date"`
	AssignedTo string `json:"assigned_to"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

// AssetResponse salida de un activo.
type AssetResponse struct {
	ID             string               `json:"id"`
	SerialNumber   string               `json:"serial_number"`
	TagNo          string               `json:"tag_no"`
	Category       string               `json:"category"`
	CompanyID      string               `json:"company_id"`
	Brand          string               `json:"brand"`
	Model          string               `json:"model"`
	PurchaseDate   string               `json:"purchase_date"`
	WarrantyExpiry string               `json:"warranty_expiry"`
	AssetValue     decimal.Decimal      `json:"asset_value"`
	Status         string               `json:"status"`
	AssignedTo     string               `json:"assigned_to"`
	PhotoURL       string               `json:"photo_url"`
	History        []AssignmentResponse `json:"history"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// AssetListResponse lista de activos.
type AssetListResponse struct {
	Items []AssetResponse `json:"items"`
	Total int             `json:"total"`
}

// ActivityResponse registro de actividad reciente.
type ActivityResponse struct {
	ID           string    `json:"id"`
	AssetID      string    `json:"asset_id"`
	AssetSerial  string    `json:"asset_serial"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Date         time.Time `json:"date"`
	Action       string    `json:"action"`
}
