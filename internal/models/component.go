package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ComponentTypeBanner           = "banner"
	ComponentTypeCountdown        = "countdown"
	ComponentTypeCarouselAuto     = "carousel_auto"
	ComponentTypeCarouselManual   = "carousel_manual"
	ComponentTypeProductSpotlight = "product_spotlight"
	ComponentTypeOfferBadge       = "offer_badge"
)

var componentTypes = map[string]struct{}{
	ComponentTypeBanner:           {},
	ComponentTypeCountdown:        {},
	ComponentTypeCarouselAuto:     {},
	ComponentTypeCarouselManual:   {},
	ComponentTypeProductSpotlight: {},
	ComponentTypeOfferBadge:       {},
}

func IsValidComponentType(t string) bool {
	_, ok := componentTypes[t]
	return ok
}

// Component is a reusable UI content definition. Config is a type-specific
// JSON document; the backend treats it as opaque apart from URL normalization.
type Component struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

const (
	ComponentStatusActive   = "active"
	ComponentStatusInactive = "inactive"
)

// CampaignComponent links one component into one campaign. The same
// component may be linked to many campaigns but only one link may hold it
// active at a time.
type CampaignComponent struct {
	ID            int64           `json:"id"`
	CampaignID    int64           `json:"campaignId"`
	ComponentID   uuid.UUID       `json:"componentId"`
	Status        string          `json:"status"`
	CustomConfig  json.RawMessage `json:"customConfig,omitempty"`
	ScheduledTime *time.Time      `json:"scheduledTime,omitempty"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
	ActivatedAt   *time.Time      `json:"activatedAt,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Component is populated on joined reads.
	Component *Component `json:"component,omitempty"`
}

// EffectiveConfig returns the per-campaign override when present, otherwise
// the component's base config.
func (cc *CampaignComponent) EffectiveConfig() json.RawMessage {
	if len(cc.CustomConfig) > 0 {
		return cc.CustomConfig
	}
	if cc.Component != nil {
		return cc.Component.Config
	}
	return nil
}
