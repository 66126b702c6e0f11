package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type ConflictResponse struct {
	Error                 string `json:"error"`
	ConflictingCampaignID int64  `json:"conflictingCampaignId"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type TriggerEventResponse struct {
	Success bool `json:"success"`
	Event   any  `json:"event"`
}

type EventsResponse struct {
	Success bool `json:"success"`
	Events  any  `json:"events"`
}

type StatusResponse struct {
	Server           string `json:"server"`
	ConnectedClients int    `json:"connectedClients"`
	WSPort           string `json:"wsPort"`
	HTTPPort         string `json:"httpPort"`
}

type AvailabilityResponse struct {
	Available             bool   `json:"available"`
	ConflictingCampaignID *int64 `json:"conflictingCampaignId,omitempty"`
}
