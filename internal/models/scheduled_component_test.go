package models

import "testing"

func TestIsValidScheduledTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ScheduledStatusPending, ScheduledStatusSent, true},
		{ScheduledStatusPending, ScheduledStatusCancelled, true},
		{ScheduledStatusSent, ScheduledStatusPending, false},
		{ScheduledStatusSent, ScheduledStatusCancelled, false},
		{ScheduledStatusCancelled, ScheduledStatusPending, false},
		{ScheduledStatusCancelled, ScheduledStatusSent, false},
		{"nonexistent", ScheduledStatusSent, false},
		{ScheduledStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidScheduledTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidScheduledTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalScheduledStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{ScheduledStatusSent, ScheduledStatusCancelled}
	for _, status := range terminal {
		transitions := ValidScheduledTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}
