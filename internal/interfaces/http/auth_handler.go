package http

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/session"
	"github.com/jhoicas/Activos-api/internal/domain"
)

// AuthHandler maneja registro, login, sesión y perfil propio.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Signup godoc
// @Summary      Registro propio (la cuenta queda pendiente de activación)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Nombre, email y contraseña"
// @Success      201   {object}  dto.SignupResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Signup(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Errores: INVALID_CREDENTIALS (401), ACCOUNT_NOT_ACTIVE (403), TOO_MANY_REQUESTS (429), UNKNOWN (503).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credenciales"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code:    string(session.CodeInvalidCredentials),
			Message: session.CodeInvalidCredentials.Message(),
		})
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), GetSessionID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Session godoc
// @Summary      Estado de la sesión
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	out, err := h.uc.Session(GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reload godoc
// @Summary      Recargar el perfil de la sesión (tras la activación por un administrador)
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.LoginResponse
// @Router       /api/auth/reload [post]
func (h *AuthHandler) Reload(c *fiber.Ctx) error {
	out, err := h.uc.Reload(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetProfile godoc
// @Summary      Perfil propio
// @Tags         profile
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.EmployeeResponse
// @Router       /api/profile [get]
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	out, err := h.uc.Profile(GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateProfile godoc
// @Summary      Actualizar perfil propio
// @Description  JSON (avatar_url puede ser un data URI) o multipart/form-data con el archivo en "avatar".
// @Tags         profile
// @Security     BearerAuth
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body  dto.UpdateProfileRequest  false  "Campos a cambiar"
// @Success      200   {object}  dto.EmployeeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var (
		in     dto.UpdateProfileRequest
		avatar *session.Avatar
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		in.Name = formValue(c, "name")
		in.Department = formValue(c, "department")
		in.JobTitle = formValue(c, "job_title")
		a, err := avatarFromForm(c)
		if err != nil {
			return writeError(c, err)
		}
		avatar = a
	} else if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), GetSessionID(c), in, avatar)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GenerateAvatar godoc
// @Summary      Generar avatar con IA (previsualización)
// @Tags         profile
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateAvatarRequest  true  "Descripción"
// @Success      200   {object}  dto.GenerateAvatarResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/profile/avatar/generate [post]
func (h *AuthHandler) GenerateAvatar(c *fiber.Ctx) error {
	var in dto.GenerateAvatarRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.GenerateAvatar(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInvalidInput) {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AI_UNAVAILABLE", Message: err.Error()})
	}
	return c.JSON(out)
}

func formValue(c *fiber.Ctx, key string) *string {
	v := c.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}

func avatarFromForm(c *fiber.Ctx) (*session.Avatar, error) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return nil, nil // sin archivo
	}
	if fh.Size > session.MaxAvatarBytes {
		return nil, fmt.Errorf("%w: el avatar supera %d bytes", domain.ErrInvalidInput, session.MaxAvatarBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer el avatar", domain.ErrInvalidInput)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, session.MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer el avatar", domain.ErrInvalidInput)
	}
	return &session.Avatar{Data: data, ContentType: fh.Header.Get(fiber.HeaderContentType)}, nil
}
