package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/repositories"
)

type fakeCampaignStore struct {
	campaigns map[int64]*models.Campaign
}

func (f *fakeCampaignStore) GetByID(_ context.Context, id int64) (*models.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %d: %w", id, repositories.ErrNotFound)
	}
	return c, nil
}

type fakeEventLog struct {
	mu       sync.Mutex
	appended map[int64][]*models.Event
}

func (f *fakeEventLog) Append(_ context.Context, campaignID int64, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appended == nil {
		f.appended = make(map[int64][]*models.Event)
	}
	f.appended[campaignID] = append(f.appended[campaignID], e)
	return nil
}

func (f *fakeEventLog) ListByCampaign(_ context.Context, campaignID int64, _ int) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for _, e := range f.appended[campaignID] {
		b, _ := json.Marshal(e)
		out = append(out, b)
	}
	return out, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
	failNext  bool
}

func (f *fakePublisher) Publish(_ context.Context, env events.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("redis down")
	}
	f.envelopes = append(f.envelopes, env)
	return nil
}

func (f *fakePublisher) published() []events.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Envelope(nil), f.envelopes...)
}

func testBase(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://live.example.com")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func logoCampaign(id int64, logo string) *models.Campaign {
	c := &models.Campaign{ID: id, Name: fmt.Sprintf("campaign-%d", id)}
	if logo != "" {
		c.Logo = &logo
	}
	return c
}

func newEventService(bufferSize int, campaigns ...*models.Campaign) (*EventService, *fakeEventLog, *fakePublisher) {
	store := &fakeCampaignStore{campaigns: map[int64]*models.Campaign{}}
	for _, c := range campaigns {
		store.campaigns[c.ID] = c
	}
	eventLog := &fakeEventLog{}
	pub := &fakePublisher{}
	return NewEventService(store, eventLog, pub, bufferSize, zap.NewNop()), eventLog, pub
}

func TestTriggerProductCampaignScoped(t *testing.T) {
	svc, eventLog, pub := newEventService(100, logoCampaign(7, "/uploads/logo.png"))
	campaignID := int64(7)

	event, err := svc.TriggerProduct(context.Background(), testBase(t), ProductInput{
		CampaignID: &campaignID,
		ProductID:  "101",
		Name:       "Phone",
		Price:      "999",
		ImageURL:   "https://x/y.jpg",
	})
	if err != nil {
		t.Fatalf("TriggerProduct: %v", err)
	}

	if event.ID == "" || event.Timestamp == 0 {
		t.Error("event should carry a fresh id and timestamp")
	}
	if event.CampaignLogo != "https://live.example.com/uploads/logo.png" {
		t.Errorf("campaign logo = %q, want normalized absolute URL", event.CampaignLogo)
	}

	if got := len(eventLog.appended[7]); got != 1 {
		t.Errorf("durable log has %d events, want 1", got)
	}

	envs := pub.published()
	if len(envs) != 1 {
		t.Fatalf("published %d envelopes, want 1", len(envs))
	}
	if envs[0].Room != 7 {
		t.Errorf("envelope room = %d, want 7 (room isolation)", envs[0].Room)
	}
}

func TestTriggerProductLegacyPath(t *testing.T) {
	svc, eventLog, pub := newEventService(100)

	_, err := svc.TriggerProduct(context.Background(), testBase(t), ProductInput{
		ProductID: "101",
		Name:      "Phone",
		Price:     "999",
	})
	if err != nil {
		t.Fatalf("TriggerProduct: %v", err)
	}

	if len(eventLog.appended) != 0 {
		t.Error("legacy events must not hit the durable log")
	}
	envs := pub.published()
	if len(envs) != 1 || envs[0].Room != events.LegacyRoom {
		t.Errorf("legacy event should publish to the legacy room, got %+v", envs)
	}
	if got := len(svc.Recent()); got != 1 {
		t.Errorf("buffer has %d events, want 1", got)
	}
}

func TestTriggerUnknownCampaignHasNoSideEffects(t *testing.T) {
	svc, eventLog, pub := newEventService(100)
	campaignID := int64(42)

	_, err := svc.TriggerProduct(context.Background(), testBase(t), ProductInput{
		CampaignID: &campaignID,
		ProductID:  "101",
		Name:       "Phone",
		Price:      "999",
	})
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	if len(svc.Recent()) != 0 || len(eventLog.appended) != 0 || len(pub.published()) != 0 {
		t.Error("a rejected trigger must leave no side effects")
	}
}

func TestTriggerInvalidPayloadHasNoSideEffects(t *testing.T) {
	svc, eventLog, pub := newEventService(100)

	_, err := svc.TriggerProduct(context.Background(), testBase(t), ProductInput{
		ProductID: "101", // missing name and price
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if len(svc.Recent()) != 0 || len(eventLog.appended) != 0 || len(pub.published()) != 0 {
		t.Error("a rejected trigger must leave no side effects")
	}
}

func TestRecentBufferEvictsOldest(t *testing.T) {
	svc, _, _ := newEventService(3)

	for i := 0; i < 5; i++ {
		_, err := svc.TriggerProduct(context.Background(), testBase(t), ProductInput{
			ProductID: fmt.Sprintf("p-%d", i),
			Name:      "Item",
			Price:     "1",
		})
		if err != nil {
			t.Fatalf("trigger %d: %v", i, err)
		}
	}

	recent := svc.Recent()
	if len(recent) != 3 {
		t.Fatalf("buffer holds %d events, want 3", len(recent))
	}
	first := recent[0].Data.(models.ProductData)
	if first.ProductID != "p-2" {
		t.Errorf("oldest surviving event = %q, want p-2 (oldest evicted first)", first.ProductID)
	}
}

func TestTriggerPollLegacyOptionsString(t *testing.T) {
	svc, _, pub := newEventService(100)

	event, err := svc.TriggerPoll(context.Background(), testBase(t), PollInput{
		Question: "Which color?",
		Options:  json.RawMessage(`"Red, Blue, , Green"`),
		Duration: json.RawMessage(`"120"`),
	})
	if err != nil {
		t.Fatalf("TriggerPoll: %v", err)
	}

	data := event.Data.(models.PollData)
	if len(data.Options) != 3 {
		t.Fatalf("parsed %d options, want 3 (empties dropped)", len(data.Options))
	}
	if data.Options[0].Text != "Red" || data.Options[2].Text != "Green" {
		t.Errorf("options parsed wrong: %+v", data.Options)
	}
	if data.Duration != 120 {
		t.Errorf("duration = %d, want 120 (string coerced)", data.Duration)
	}
	if len(pub.published()) != 1 {
		t.Errorf("poll should have been broadcast")
	}
}

func TestTriggerPollObjectOptions(t *testing.T) {
	svc, _, _ := newEventService(100)

	event, err := svc.TriggerPoll(context.Background(), testBase(t), PollInput{
		Question: "Which look?",
		Options:  json.RawMessage(`[{"text":"A","imageUrl":"/a.jpg"},{"text":"B","imageUrl":"https://cdn/b.jpg"}]`),
		Duration: json.RawMessage(`60`),
	})
	if err != nil {
		t.Fatalf("TriggerPoll: %v", err)
	}

	data := event.Data.(models.PollData)
	if data.Options[0].ImageURL != "https://live.example.com/a.jpg" {
		t.Errorf("relative option image not normalized: %q", data.Options[0].ImageURL)
	}
	if data.Options[1].ImageURL != "https://cdn/b.jpg" {
		t.Errorf("absolute option image should pass through: %q", data.Options[1].ImageURL)
	}
	if data.Duration != 60 {
		t.Errorf("duration = %d, want 60", data.Duration)
	}
}

func TestCoerceDuration(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"number", `90`, 90, false},
		{"float", `90.5`, 90, false},
		{"numeric string", `"45"`, 45, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"absent", ``, 0, false},
		{"garbage string", `"soon"`, 0, true},
		{"object", `{}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceDuration(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("coerceDuration(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("coerceDuration(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTriggerSurvivesPublishFailure(t *testing.T) {
	svc, eventLog, pub := newEventService(100, logoCampaign(7, ""))
	pub.failNext = true
	campaignID := int64(7)

	event, err := svc.TriggerProduct(context.Background(), testBase(t), ProductInput{
		CampaignID: &campaignID,
		ProductID:  "101",
		Name:       "Phone",
		Price:      "999",
	})
	if err != nil {
		t.Fatalf("a publish failure must not fail the trigger: %v", err)
	}
	if event == nil || len(eventLog.appended[7]) != 1 {
		t.Error("event should still be persisted when broadcast fails")
	}
}
