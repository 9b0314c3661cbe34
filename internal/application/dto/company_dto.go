package dto

import "time"

// CompanyRequest entrada para crear o renombrar una empresa.
type CompanyRequest struct {
	Name string `json:"name" valid:"required,length(1|200)"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse lista de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Total int               `json:"total"`
}
