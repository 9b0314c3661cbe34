package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/session"
)

// sessionLookup es el contrato mínimo que necesita el middleware para encontrar la sesión.
// Lo implementa *session.Registry.
type sessionLookup interface {
	Get(id string) *session.Session
}

// RequireSession verifica que la sesión del token siga viva en el servidor y pertenezca al
// mismo usuario. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 SESSION_EXPIRED → la sesión se cerró (logout, revocación o reinicio del servidor).
//   - 403 ACCOUNT_NOT_ACTIVE → la sesión existe pero el perfil no tiene acceso.
//   - Con allowPending la sesión solo debe existir (consultar y recargar el estado).
//
// El rol de c.Locals se reemplaza por el del perfil vigente.
func RequireSession(sessions sessionLookup, allowPending bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := sessions.Get(GetSessionID(c))
		if s == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "SESSION_EXPIRED",
				Message: "la sesión ya no está activa, inicie sesión de nuevo",
			})
		}
		snap := s.Snapshot()
		if snap.Identity != nil && snap.Identity.UID != GetUserID(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "SESSION_EXPIRED",
				Message: "la sesión pertenece a otra identidad",
			})
		}
		if allowPending {
			return c.Next()
		}
		if !snap.Allowed() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    string(session.CodeAccountNotActive),
				Message: session.CodeAccountNotActive.Message(),
			})
		}
		c.Locals(LocalRole, snap.Profile.Role)
		return c.Next()
	}
}
