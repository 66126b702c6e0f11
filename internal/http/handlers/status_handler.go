package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/live-campaigns/backend/internal/config"
	"github.com/live-campaigns/backend/internal/http/dto"
	"github.com/live-campaigns/backend/internal/ws"
)

type StatusHandler struct {
	cfg *config.Config
	hub *ws.Hub
}

func NewStatusHandler(cfg *config.Config, hub *ws.Hub) *StatusHandler {
	return &StatusHandler{cfg: cfg, hub: hub}
}

// GetStatus reports liveness and the live connection count. HTTP and WS share
// one listener, so both ports are the configured port.
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(dto.StatusResponse{
		Server:           "running",
		ConnectedClients: h.hub.TotalConnections(),
		WSPort:           h.cfg.Port,
		HTTPPort:         h.cfg.Port,
	})
}
