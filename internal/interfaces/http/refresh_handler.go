package http

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/refresh"
)

const defaultHeartbeat = 25 * time.Second

// RefreshHandler expone la señal de refresco: versión actual y flujo de eventos.
type RefreshHandler struct {
	signal    *refresh.Signal
	done      <-chan struct{}
	heartbeat time.Duration
}

// NewRefreshHandler construye el handler. Los flujos abiertos terminan cuando ctx se cancela.
func NewRefreshHandler(ctx context.Context, signal *refresh.Signal, heartbeat time.Duration) *RefreshHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &RefreshHandler{signal: signal, done: ctx.Done(), heartbeat: heartbeat}
}

// Version godoc
// @Summary      Versión actual de la señal de refresco
// @Tags         refresh
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.RefreshResponse
// @Router       /api/refresh [get]
func (h *RefreshHandler) Version(c *fiber.Ctx) error {
	return c.JSON(dto.RefreshResponse{Version: h.signal.Version()})
}

// Stream godoc
// @Summary      Flujo de eventos de refresco (SSE)
// @Description  Emite "event: refresh" con la versión actual al conectar y en cada cambio. El token puede ir en access_token.
// @Tags         refresh
// @Security     BearerAuth
// @Produce      text/event-stream
// @Router       /api/refresh/stream [get]
func (h *RefreshHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	updates, cancel := h.signal.Subscribe()
	current := h.signal.Version()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		if writeRefreshEvent(w, current) != nil {
			return
		}
		for {
			select {
			case v, ok := <-updates:
				if !ok {
					return
				}
				if writeRefreshEvent(w, v) != nil {
					return
				}
			case <-ticker.C:
				// comentario SSE para mantener viva la conexión y detectar clientes caídos
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			case <-h.done:
				return
			}
		}
	})
	return nil
}

func writeRefreshEvent(w *bufio.Writer, version uint64) error {
	if _, err := fmt.Fprintf(w, "id: %d\nevent: refresh\ndata: {\"version\":%d}\n\n", version, version); err != nil {
		return err
	}
	return w.Flush()
}
