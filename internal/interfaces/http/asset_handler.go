package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
)

// AssetHandler maneja las peticiones HTTP para activos y su actividad.
type AssetHandler struct {
	uc *usecase.AssetUseCase
}

// NewAssetHandler construye el handler.
func NewAssetHandler(uc *usecase.AssetUseCase) *AssetHandler {
	return &AssetHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar activo
// @Description  La garantía se calcula como fecha de compra + 2 años. El número de placa debe ser único.
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAssetRequest  true  "Datos del activo"
// @Success      201   {object}  dto.AssetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assets [post]
func (h *AssetHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAssetRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener activo por ID (incluye historial)
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del activo"
// @Success      200  {object}  dto.AssetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assets/{id} [get]
func (h *AssetHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar activos
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        status       query  string  false  "Estado"
// @Param        category     query  string  false  "Categoría"
// @Param        company_id   query  string  false  "Empresa"
// @Param        assigned_to  query  string  false  "Empleado asignado"
// @Param        q            query  string  false  "Búsqueda por serie, placa, marca o modelo"
// @Success      200  {object}  dto.AssetListResponse
// @Router       /api/assets [get]
func (h *AssetHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.uc.List(c.UserContext(), usecase.AssetFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		CompanyID:  c.Query("company_id"),
		AssignedTo: c.Query("assigned_to"),
		Query:      c.Query("q"),
	}))
}

// Update godoc
// @Summary      Actualizar activo
// @Description  Si cambia assigned_to se agrega una entrada al historial y un registro de actividad.
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del activo"
// @Param        body  body  dto.UpdateAssetRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.AssetResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assets/{id} [put]
func (h *AssetHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateAssetRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Assign godoc
// @Summary      Asignar activo a un empleado
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del activo"
// @Param        body  body  dto.AssignAssetRequest  true  "Empleado y notas"
// @Success      200   {object}  dto.AssetResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/assign [post]
func (h *AssetHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignAssetRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Assign(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Decommission godoc
// @Summary      Dar de baja un activo
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del activo"
// @Success      200  {object}  dto.AssetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/decommission [post]
func (h *AssetHandler) Decommission(c *fiber.Ctx) error {
	out, err := h.uc.Decommission(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Activity godoc
// @Summary      Actividad reciente (asignaciones y devoluciones)
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  dto.ActivityResponse
// @Router       /api/activity [get]
func (h *AssetHandler) Activity(c *fiber.Ctx) error {
	return c.JSON(h.uc.RecentActivity(c.UserContext()))
}
