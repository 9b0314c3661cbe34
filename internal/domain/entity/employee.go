package entity

import "time"

// Roles válidos para Employee.
const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
)

// Valores iniciales de un perfil creado por registro propio.
const (
	DefaultDepartment = "Unassigned"
	DefaultJobTitle   = "New Employee"
)

// Employee es el perfil de la aplicación. Comparte ID con la identidad del proveedor de auth.
// Un perfil inactivo nunca puede completar un login.
type Employee struct {
	ID         string
	Name       string
	Email      string
	Department string
	JobTitle   string
	AvatarURL  string // URL estable en blob storage, nunca un payload inline
	Role       string // Admin, Employee
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsAdmin informa si el perfil tiene rol de administrador.
func (e *Employee) IsAdmin() bool {
	return e != nil && e.Role == RoleAdmin
}

// ValidRole informa si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
