package entity

import "time"

// Acciones registradas en la actividad reciente.
const (
	ActivityAssigned = "Assigned"
	ActivityReturned = "Returned"
)

// Activity registro derivado de un cambio de asignación; no lo escribe el usuario directamente.
type Activity struct {
	ID           string
	AssetID      string
	AssetSerial  string
	EmployeeID   string
	EmployeeName string
	Date         time.Time
	Action       string // Assigned, Returned
}
