package models

import "time"

type Campaign struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Logo           *string           `json:"logo,omitempty"`
	Description    *string           `json:"description,omitempty"`
	StartDate      *time.Time        `json:"startDate,omitempty"`
	EndDate        *time.Time        `json:"endDate,omitempty"`
	IntegrationIDs map[string]string `json:"integrationIds,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// IsActive reports whether the campaign accepts scheduling and broadcasts.
// A campaign with no end date never expires.
func (c *Campaign) IsActive(now time.Time) bool {
	return c.EndDate == nil || c.EndDate.After(now)
}
