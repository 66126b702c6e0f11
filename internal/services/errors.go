package services

import "fmt"

// ComponentConflictError reports that a component is already active in
// another campaign; the holding campaign id lets the operator resolve it.
type ComponentConflictError struct {
	CampaignID int64
}

func (e *ComponentConflictError) Error() string {
	return fmt.Sprintf("component is already active in campaign %d", e.CampaignID)
}

// ValidationError marks operator input rejected before any side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
