package session

import (
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// Status estado de la sesión.
type Status int

const (
	// StatusLoading: hay (o puede haber) una identidad y su perfil se está resolviendo.
	StatusLoading Status = iota
	// StatusUnauthenticated: sin identidad. Err indica el motivo si hubo un rechazo.
	StatusUnauthenticated
	// StatusActive: identidad con perfil activo.
	StatusActive
	// StatusPendingActivation: recién registrado; perfil presente pero inactivo.
	StatusPendingActivation
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusActive:
		return "active"
	case StatusPendingActivation:
		return "pending_activation"
	}
	return "unknown"
}

// Snapshot es la tupla {identity, profile, isLoading} que ve el resto de la aplicación.
type Snapshot struct {
	Status   Status
	Identity *ports.Identity
	Profile  *entity.Employee
	Err      error
}

// Loading informa si el perfil todavía se está resolviendo.
func (s Snapshot) Loading() bool { return s.Status == StatusLoading }

// Allowed es el único predicado de acceso a la aplicación: perfil presente y activo.
func (s Snapshot) Allowed() bool {
	return s.Profile != nil && s.Profile.Active
}

func (s Snapshot) clone() Snapshot {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}
