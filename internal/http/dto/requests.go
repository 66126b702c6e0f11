package dto

import (
	"encoding/json"
	"time"
)

type TriggerProductRequest struct {
	CampaignID  *int64 `json:"campaignId,omitempty"`
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
}

// TriggerPollRequest keeps options and duration raw: options arrive either as
// a legacy comma-separated string or a list of {text, imageUrl} objects, and
// duration may be a string or a number.
type TriggerPollRequest struct {
	CampaignID *int64          `json:"campaignId,omitempty"`
	Question   string          `json:"question"`
	Options    json.RawMessage `json:"options,omitempty"`
	ImageURL   string          `json:"imageUrl,omitempty"`
	Duration   json.RawMessage `json:"duration,omitempty"`
}

type TriggerContestRequest struct {
	CampaignID  *int64 `json:"campaignId,omitempty"`
	Title       string `json:"title"`
	Prize       string `json:"prize"`
	Description string `json:"description,omitempty"`
	EndsAt      *int64 `json:"endsAt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type CreateCampaignRequest struct {
	Name           string            `json:"name"`
	Logo           *string           `json:"logo,omitempty"`
	Description    *string           `json:"description,omitempty"`
	StartDate      *time.Time        `json:"startDate,omitempty"`
	EndDate        *time.Time        `json:"endDate,omitempty"`
	IntegrationIDs map[string]string `json:"integrationIds,omitempty"`
}

type UpdateCampaignRequest = CreateCampaignRequest

type CreateComponentRequest struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

type UpdateComponentRequest = CreateComponentRequest

type LinkComponentRequest struct {
	ComponentID   string          `json:"componentId"`
	CustomConfig  json.RawMessage `json:"customConfig,omitempty"`
	ScheduledTime *time.Time      `json:"scheduledTime,omitempty"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
}

// UpdateLinkRequest drives both the manual status toggle and schedule edits;
// absent fields are left untouched, except config/schedule which are updated
// together when Status is empty.
type UpdateLinkRequest struct {
	Status        string          `json:"status,omitempty"`
	CustomConfig  json.RawMessage `json:"customConfig,omitempty"`
	ScheduledTime *time.Time      `json:"scheduledTime,omitempty"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
}

type CreateScheduledComponentRequest struct {
	CampaignID    int64           `json:"campaignId"`
	Type          string          `json:"type"`
	ScheduledTime time.Time       `json:"scheduledTime"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
}

type UpdateScheduledComponentRequest struct {
	Status string `json:"status"`
}
