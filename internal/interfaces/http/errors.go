package http

import (
	"errors"

	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/session"
	"github.com/jhoicas/Activos-api/internal/domain"
)

// bindJSON parsea el cuerpo y valida los tags `valid`. Si falla responde 400 y devuelve false.
func bindJSON(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		return false
	}
	if _, err := govalidator.ValidateStruct(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		return false
	}
	return true
}

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		status := fiber.StatusUnauthorized
		switch authErr.Code {
		case session.CodeAccountNotActive:
			status = fiber.StatusForbidden
		case session.CodeRateLimited:
			status = fiber.StatusTooManyRequests
		case session.CodeUnknown:
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: string(authErr.Code), Message: authErr.Code.Message()})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrWeakPassword):
		status, code = fiber.StatusBadRequest, "WEAK_PASSWORD"
	case errors.Is(err, domain.ErrDuplicateTag):
		status, code = fiber.StatusConflict, "DUPLICATE_TAG"
	case errors.Is(err, domain.ErrCompanyInUse):
		status, code = fiber.StatusConflict, "COMPANY_IN_USE"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code = fiber.StatusConflict, "EMAIL_IN_USE"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrTooManyRequests):
		status, code = fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// ErrorHandler responde los errores que escapan de los handlers (rutas inexistentes,
// límites de fiber) con el mismo formato dto.ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		case fiber.StatusBadRequest:
			code = "INVALID_BODY"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
