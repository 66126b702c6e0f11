package handlers

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/ws"
)

type WSHandler struct {
	hub *ws.Hub
	log *zap.Logger
}

func NewWSHandler(hub *ws.Hub, log *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// HandleCampaign serves /ws/:campaignId. The route constraint already limits
// the parameter to digits; anything unparseable is destroyed without joining
// a room.
func (h *WSHandler) HandleCampaign(conn *websocket.Conn) {
	roomID, err := strconv.ParseInt(conn.Params("campaignId"), 10, 64)
	if err != nil || roomID <= 0 {
		_ = conn.Close()
		return
	}
	h.serve(conn, roomID)
}

// HandleLegacy serves the ungrouped /ws path: room 0.
func (h *WSHandler) HandleLegacy(conn *websocket.Conn) {
	h.serve(conn, events.LegacyRoom)
}

func (h *WSHandler) serve(conn *websocket.Conn, roomID int64) {
	h.hub.Assign(conn, roomID)
	h.hub.BroadcastClientCount(roomID)
	h.log.Debug("viewer connected", zap.Int64("room", roomID))

	defer func() {
		// Close and error paths both land here; Release is idempotent.
		h.hub.Release(conn)
		h.hub.BroadcastClientCount(roomID)
		h.log.Debug("viewer disconnected", zap.Int64("room", roomID))
		_ = conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
