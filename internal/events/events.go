package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/live-campaigns/backend/internal/models"
)

// Redis channel carrying broadcast envelopes from any producer (API process,
// standalone scheduler) to every process that holds viewer connections.
const ChannelBroadcast = "events:broadcast"

// Control message types (server -> client).
const (
	MessageTypeClientCount            = "client_count"
	MessageTypeComponentStatusChanged = "component_status_changed"
)

// LegacyRoom is the sentinel room for ungrouped connections; an envelope
// addressed to it fans out to every room.
const LegacyRoom int64 = 0

// Envelope is the unit that travels over Redis pub/sub. Payload is the
// already-serialized client-facing message.
type Envelope struct {
	Room    int64           `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

type ClientCountMessage struct {
	Type      string          `json:"type"`
	Data      ClientCountData `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type ClientCountData struct {
	Count int `json:"count"`
}

func NewClientCount(count int, now time.Time) ClientCountMessage {
	return ClientCountMessage{
		Type:      MessageTypeClientCount,
		Data:      ClientCountData{Count: count},
		Timestamp: now.UnixMilli(),
	}
}

type ComponentStatusChangedMessage struct {
	Type        string           `json:"type"`
	CampaignID  int64            `json:"campaignId"`
	ComponentID string           `json:"componentId"`
	Status      string           `json:"status"`
	Component   ComponentPayload `json:"component"`
}

type ComponentPayload struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

func NewComponentStatusChanged(campaignID int64, comp *models.Component, status string, config json.RawMessage) ComponentStatusChangedMessage {
	return ComponentStatusChangedMessage{
		Type:        MessageTypeComponentStatusChanged,
		CampaignID:  campaignID,
		ComponentID: comp.ID.String(),
		Status:      status,
		Component: ComponentPayload{
			ID:     comp.ID.String(),
			Type:   comp.Type,
			Name:   comp.Name,
			Config: config,
		},
	}
}

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, handler func(Envelope)) error
}
