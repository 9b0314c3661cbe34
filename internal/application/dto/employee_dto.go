package dto

import "time"

// CreateEmployeeRequest alta de un perfil por un administrador.
type CreateEmployeeRequest struct {
	Name       string `json:"name" valid:"required,length(1|200)"`
	Email      string `json:"email" valid:"required,email"`
	Department string `json:"department" valid:"optional,length(1|100)"`
	JobTitle   string `json:"job_title" valid:"optional,length(1|100)"`
	Role       string `json:"role" valid:"optional,in(Admin|Employee)"`
}

// UpdateEmployeeRequest cambios de un administrador (campos opcionales).
type UpdateEmployeeRequest struct {
	Name       *string `json:"name" valid:"-"`
	Department *string `json:"department" valid:"-"`
	JobTitle   *string `json:"job_title" valid:"-"`
	AvatarURL  *string `json:"avatar_url" valid:"-"`
	Role       *string `json:"role" valid:"-"`
	Active     *bool   `json:"active" valid:"-"`
}

// EmployeeResponse salida de un perfil.
type EmployeeResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	JobTitle   string    `json:"job_title"`
	AvatarURL  string    `json:"avatar_url"`
	Role       string    `json:"role"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmployeeListResponse lista de perfiles.
type EmployeeListResponse struct {
	Items []EmployeeResponse `json:"items"`
	Total int                `json:"total"`
}
