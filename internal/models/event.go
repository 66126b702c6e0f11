package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	EventTypeProduct = "product"
	EventTypePoll    = "poll"
	EventTypeContest = "contest"
)

// Event is what a room receives when an operator triggers a broadcast.
// Data holds exactly one of ProductData, PollData or ContestData,
// discriminated by Type.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	CampaignID   *int64    `json:"campaignId,omitempty"`
	CampaignLogo string    `json:"campaignLogo,omitempty"`
	Data         EventData `json:"data"`
	Timestamp    int64     `json:"timestamp"` // epoch milliseconds
}

type EventData interface {
	EventType() string
}

type ProductData struct {
	ProductID   string `json:"productId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
}

func (ProductData) EventType() string { return EventTypeProduct }

type PollOption struct {
	Text     string `json:"text" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type PollData struct {
	Question string       `json:"question" validate:"required"`
	Options  []PollOption `json:"options" validate:"required,min=2,dive"`
	ImageURL string       `json:"imageUrl,omitempty"`
	Duration int          `json:"duration,omitempty" validate:"omitempty,gt=0"` // seconds
}

func (PollData) EventType() string { return EventTypePoll }

type ContestData struct {
	Title       string `json:"title" validate:"required"`
	Prize       string `json:"prize" validate:"required"`
	Description string `json:"description,omitempty"`
	EndsAt      *int64 `json:"endsAt,omitempty"` // epoch milliseconds
	ImageURL    string `json:"imageUrl,omitempty"`
}

func (ContestData) EventType() string { return EventTypeContest }

// Validate checks the fully constructed event before it is persisted or
// broadcast. The type switch is exhaustive over the event kinds.
func (e *Event) Validate(v *validator.Validate) error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("event timestamp is required")
	}
	if e.Data == nil {
		return fmt.Errorf("event data is required")
	}
	if e.Data.EventType() != e.Type {
		return fmt.Errorf("event type %q does not match payload type %q", e.Type, e.Data.EventType())
	}

	switch data := e.Data.(type) {
	case ProductData:
		return v.Struct(data)
	case PollData:
		return v.Struct(data)
	case ContestData:
		return v.Struct(data)
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}
