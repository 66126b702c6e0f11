package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestEventValidate(t *testing.T) {
	v := validator.New()

	base := func(typ string, data EventData) *Event {
		return &Event{ID: "evt-1", Type: typ, Data: data, Timestamp: 1700000000000}
	}

	tests := []struct {
		name    string
		event   *Event
		wantErr bool
	}{
		{
			name:  "valid product",
			event: base(EventTypeProduct, ProductData{ProductID: "101", Name: "Phone", Price: "999", ImageURL: "https://x/y.jpg"}),
		},
		{
			name:    "product missing price",
			event:   base(EventTypeProduct, ProductData{ProductID: "101", Name: "Phone"}),
			wantErr: true,
		},
		{
			name: "valid poll",
			event: base(EventTypePoll, PollData{
				Question: "Which color?",
				Options:  []PollOption{{Text: "Red"}, {Text: "Blue"}},
				Duration: 60,
			}),
		},
		{
			name: "poll with single option",
			event: base(EventTypePoll, PollData{
				Question: "Which color?",
				Options:  []PollOption{{Text: "Red"}},
			}),
			wantErr: true,
		},
		{
			name: "poll option without text",
			event: base(EventTypePoll, PollData{
				Question: "Which color?",
				Options:  []PollOption{{Text: "Red"}, {ImageURL: "https://x/b.jpg"}},
			}),
			wantErr: true,
		},
		{
			name: "poll with negative duration",
			event: base(EventTypePoll, PollData{
				Question: "Which color?",
				Options:  []PollOption{{Text: "Red"}, {Text: "Blue"}},
				Duration: -5,
			}),
			wantErr: true,
		},
		{
			name:  "valid contest",
			event: base(EventTypeContest, ContestData{Title: "Giveaway", Prize: "Headphones"}),
		},
		{
			name:    "contest missing prize",
			event:   base(EventTypeContest, ContestData{Title: "Giveaway"}),
			wantErr: true,
		},
		{
			name:    "type payload mismatch",
			event:   base(EventTypePoll, ProductData{ProductID: "101", Name: "Phone", Price: "999"}),
			wantErr: true,
		},
		{
			name:    "nil data",
			event:   base(EventTypeProduct, nil),
			wantErr: true,
		},
		{
			name:    "missing id",
			event:   &Event{Type: EventTypeProduct, Data: ProductData{ProductID: "1", Name: "A", Price: "2"}, Timestamp: 1},
			wantErr: true,
		},
		{
			name:    "missing timestamp",
			event:   &Event{ID: "evt-1", Type: EventTypeProduct, Data: ProductData{ProductID: "1", Name: "A", Price: "2"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
