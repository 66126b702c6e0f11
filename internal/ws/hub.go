// Package ws holds the connection registry and broadcast engine: rooms keyed
// by campaign id, one room per connection, best-effort fan-out.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
)

// Conn is the transport surface the hub needs from a connection.
// *websocket.Conn satisfies it; tests use fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub tracks live connections partitioned into rooms and delivers serialized
// messages to them. Room 0 is the legacy ungrouped room. All map access is
// serialized by mu; sends happen outside any per-connection lock and a
// failing send never aborts the rest of a broadcast.
type Hub struct {
	subscriber events.Subscriber
	log        *zap.Logger
	now        func() time.Time

	mu       sync.RWMutex
	rooms    map[int64]map[Conn]struct{}
	assigned map[Conn]int64
}

func NewHub(subscriber events.Subscriber, log *zap.Logger) *Hub {
	return &Hub{
		subscriber: subscriber,
		log:        log,
		now:        time.Now,
		rooms:      make(map[int64]map[Conn]struct{}),
		assigned:   make(map[Conn]int64),
	}
}

// Start wires the hub to the broadcast channel so envelopes published by any
// process (API or standalone scheduler) reach the connections held here.
func (h *Hub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, func(env events.Envelope) {
		if env.Room == events.LegacyRoom {
			h.BroadcastLegacy(env.Payload)
			return
		}
		h.BroadcastToRoom(env.Room, env.Payload)
	})
}

// Assign registers conn under roomID. The assignment is immutable for the
// connection's lifetime; the connection is immediately visible to broadcasts.
func (h *Hub) Assign(conn Conn, roomID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[Conn]struct{})
		h.rooms[roomID] = room
	}
	room[conn] = struct{}{}
	h.assigned[conn] = roomID
}

// Release removes conn from its room, deleting the room when it empties.
// Releasing an unknown or already-released connection is a no-op: close and
// error paths both converge here.
func (h *Hub) Release(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := h.assigned[conn]
	if !ok {
		return
	}
	delete(h.assigned, conn)

	room := h.rooms[roomID]
	delete(room, conn)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

// Room reports which room conn is assigned to.
func (h *Hub) Room(conn Conn) (int64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roomID, ok := h.assigned[conn]
	return roomID, ok
}

// RoomSize returns the current connection count for a room, 0 if absent.
func (h *Hub) RoomSize(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// TotalConnections counts connections across all rooms.
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.assigned)
}

// BroadcastToRoom sends payload to every connection currently in roomID.
// Individual send failures are logged and skipped; the connection state can
// change between enumeration and write, so a failed write is not an error.
func (h *Hub) BroadcastToRoom(roomID int64, payload []byte) {
	for _, conn := range h.snapshot(roomID) {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Debug("ws send skipped", zap.Int64("room", roomID), zap.Error(err))
		}
	}
}

// BroadcastLegacy sends payload to every connection in every room. Only the
// legacy ungrouped path uses this; campaign-scoped flows must not.
func (h *Hub) BroadcastLegacy(payload []byte) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.assigned))
	for conn := range h.assigned {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Debug("ws legacy send skipped", zap.Error(err))
		}
	}
}

// BroadcastClientCount pushes the room's live connection count to everyone in
// it. Called after every connect and disconnect so viewers converge on the
// actual count.
func (h *Hub) BroadcastClientCount(roomID int64) {
	msg := events.NewClientCount(h.RoomSize(roomID), h.now())
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal client count", zap.Error(err))
		return
	}
	h.BroadcastToRoom(roomID, payload)
}

func (h *Hub) snapshot(roomID int64) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[roomID]
	conns := make([]Conn, 0, len(room))
	for conn := range room {
		conns = append(conns, conn)
	}
	return conns
}
