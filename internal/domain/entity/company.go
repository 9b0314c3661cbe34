package entity

import "time"

// Company representa la empresa propietaria de un activo.
// Solo puede eliminarse si ningún Asset la referencia.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
