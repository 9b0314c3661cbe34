package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Categorías de activo.
const (
	CategoryLaptop  = "Laptop"
	CategoryDesktop = "Desktop"
	CategoryPhone   = "Phone"
	CategoryTablet  = "Tablet"
	CategoryOther   = "Other"
)

// Estados de activo. Status y AssignedTo se mueven juntos.
const (
	AssetStatusAvailable      = "Available"
	AssetStatusInUse          = "In Use"
	AssetStatusInRepair       = "In Repair"
	AssetStatusDecommissioned = "Decommissioned"
)

// DateLayout formato de las fechas de calendario (compra, garantía, historial).
const DateLayout = "2006-01-02"

// WarrantyYears años de garantía contados desde la fecha de compra.
const WarrantyYears = 2

// DefaultAssignmentNotes nota usada cuando una asignación no trae observaciones.
const DefaultAssignmentNotes = "Assigned via web interface"

// Asset representa un activo físico (portátil, teléfono, etc.).
type Asset struct {
	ID             string
	SerialNumber   string
	TagNo          string // único entre todos los activos (comparación sin mayúsculas)
	Category       string
	CompanyID      string
	Brand          string
	Model          string
	PurchaseDate   time.Time
	WarrantyExpiry time.Time // PurchaseDate + WarrantyYears, calculado al crear
	AssetValue     decimal.Decimal
	Status         string
	AssignedTo     string // Employee ID o "" si no está asignado
	PhotoURL       string
	History        []Assignment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Assignment es una entrada inmutable del historial de asignaciones de un activo.
type Assignment struct {
	Date       time.Time `json:"date" bson:"date"`
	AssignedTo string    `json:"assigned_to" bson:"assignedTo"`
	Status     string    `json:"status" bson:"status"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// WarrantyFrom calcula el vencimiento de garantía para una fecha de compra.
func WarrantyFrom(purchase time.Time) time.Time {
	return purchase.AddDate(WarrantyYears, 0, 0)
}

// ValidCategory informa si c es una categoría conocida.
func ValidCategory(c string) bool {
	switch c {
	case CategoryLaptop, CategoryDesktop, CategoryPhone, CategoryTablet, CategoryOther:
		return true
	}
	return false
}

// ValidAssetStatus informa si s es un estado conocido.
func ValidAssetStatus(s string) bool {
	switch s {
	case AssetStatusAvailable, AssetStatusInUse, AssetStatusInRepair, AssetStatusDecommissioned:
		return true
	}
	return false
}

// FoldTag normaliza un número de placa para compararlo sin distinguir mayúsculas
// (plegado Unicode, no solo ASCII). Es la clave del índice único de placas.
func FoldTag(tag string) string {
	return cases.Fold().String(strings.TrimSpace(tag))
}
