package models

import (
	"encoding/json"
	"time"
)

const (
	ScheduledStatusPending   = "pending"
	ScheduledStatusSent      = "sent"
	ScheduledStatusCancelled = "cancelled"
)

// ValidScheduledTransitions maps each scheduled-component status to the
// statuses it may move to. Sent and cancelled are terminal; transitions out
// of pending are driven externally, not by the scheduler loop.
var ValidScheduledTransitions = map[string][]string{
	ScheduledStatusPending:   {ScheduledStatusSent, ScheduledStatusCancelled},
	ScheduledStatusSent:      {},
	ScheduledStatusCancelled: {},
}

func IsValidScheduledTransition(from, to string) bool {
	for _, s := range ValidScheduledTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ScheduledComponent is the legacy one-shot timed content entity, separate
// from CampaignComponent's built-in scheduling.
type ScheduledComponent struct {
	ID            int64           `json:"id"`
	CampaignID    int64           `json:"campaignId"`
	Type          string          `json:"type"`
	ScheduledTime time.Time       `json:"scheduledTime"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
	Data          json.RawMessage `json:"data"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
