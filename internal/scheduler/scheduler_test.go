package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/models"
)

type fakeCampaigns struct {
	campaigns []models.Campaign
	err       error
}

func (f *fakeCampaigns) ListAll(_ context.Context) ([]models.Campaign, error) {
	return f.campaigns, f.err
}

type fakeLinks struct {
	mu           sync.Mutex
	byCampaign   map[int64][]models.CampaignComponent
	listErr      map[int64]error
	activeHolder *int64

	activated   []int64
	deactivated []int64
}

func (f *fakeLinks) ListByCampaign(_ context.Context, campaignID int64) ([]models.CampaignComponent, error) {
	if err := f.listErr[campaignID]; err != nil {
		return nil, err
	}
	return f.byCampaign[campaignID], nil
}

func (f *fakeLinks) ActiveHolder(_ context.Context, _ uuid.UUID, _ int64) (*int64, error) {
	return f.activeHolder, nil
}

func (f *fakeLinks) Activate(_ context.Context, linkID int64, _ uuid.UUID, campaignID int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, linkID)
	links := f.byCampaign[campaignID]
	for i := range links {
		if links[i].ID == linkID {
			links[i].Status = models.ComponentStatusActive
			links[i].ActivatedAt = &at
		}
	}
	return true, nil
}

func (f *fakeLinks) Deactivate(_ context.Context, linkID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, linkID)
	for _, links := range f.byCampaign {
		for i := range links {
			if links[i].ID == linkID {
				links[i].Status = models.ComponentStatusInactive
			}
		}
	}
	return nil
}

type capturePublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *capturePublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *capturePublisher) published() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.envelopes...)
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func link(id, campaignID int64, status string, scheduled, end *time.Time) models.CampaignComponent {
	comp := &models.Component{
		ID:     uuid.New(),
		Name:   "hero",
		Type:   models.ComponentTypeBanner,
		Config: json.RawMessage(`{"text":"hi"}`),
	}
	return models.CampaignComponent{
		ID:            id,
		CampaignID:    campaignID,
		ComponentID:   comp.ID,
		Status:        status,
		ScheduledTime: scheduled,
		EndTime:       end,
		Component:     comp,
	}
}

func newScheduler(campaigns *fakeCampaigns, links *fakeLinks, pub *capturePublisher, now time.Time) *Scheduler {
	base, _ := url.Parse("https://live.example.com")
	s := New(campaigns, links, pub, base, time.Minute, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func activeCampaign(id int64) models.Campaign {
	return models.Campaign{ID: id, Name: "c"}
}

func TestTickBeforeWindowLeavesInactive(t *testing.T) {
	scheduled := t0.Add(10 * time.Minute)
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusInactive, &scheduled, nil)},
	}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 0 {
		t.Error("nothing should activate before scheduledTime")
	}
	if len(pub.published()) != 0 {
		t.Error("no broadcast expected")
	}
}

func TestTickInsideWindowActivatesOnce(t *testing.T) {
	scheduled := t0.Add(-5 * time.Minute)
	end := t0.Add(30 * time.Minute)
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusInactive, &scheduled, &end)},
	}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 1 {
		t.Fatalf("activated %d links, want 1", len(links.activated))
	}

	envs := pub.published()
	if len(envs) != 1 || envs[0].Room != 1 {
		t.Fatalf("expected 1 broadcast to room 1, got %+v", envs)
	}
	var msg events.ComponentStatusChangedMessage
	if err := json.Unmarshal(envs[0].Payload, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Status != models.ComponentStatusActive || msg.Type != events.MessageTypeComponentStatusChanged {
		t.Errorf("broadcast = %+v", msg)
	}

	// A second tick inside the window is idempotent: the link is active now
	// and its end time has not passed.
	s.Tick(context.Background())
	if len(links.activated) != 1 {
		t.Errorf("repeated tick re-activated: %d activations", len(links.activated))
	}
	if len(pub.published()) != 1 {
		t.Errorf("repeated tick re-broadcast: %d envelopes", len(pub.published()))
	}
}

func TestTickAfterEndDeactivates(t *testing.T) {
	scheduled := t0.Add(-30 * time.Minute)
	end := t0.Add(-5 * time.Minute)
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusActive, &scheduled, &end)},
	}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())

	if len(links.deactivated) != 1 {
		t.Fatalf("deactivated %d links, want 1", len(links.deactivated))
	}
	var msg events.ComponentStatusChangedMessage
	envs := pub.published()
	if len(envs) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(envs))
	}
	_ = json.Unmarshal(envs[0].Payload, &msg)
	if msg.Status != models.ComponentStatusInactive {
		t.Errorf("broadcast status = %q, want inactive", msg.Status)
	}
}

func TestLateDiscoveryNeverFlickers(t *testing.T) {
	// Both times already elapsed when first observed: must stay inactive.
	scheduled := t0.Add(-30 * time.Minute)
	end := t0.Add(-5 * time.Minute)
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusInactive, &scheduled, &end)},
	}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 0 || len(links.deactivated) != 0 {
		t.Error("an elapsed window must not transition at all")
	}
	if len(pub.published()) != 0 {
		t.Error("an elapsed window must not broadcast")
	}
}

func TestNoEndTimeActivatesAndStaysOn(t *testing.T) {
	scheduled := t0.Add(-5 * time.Minute)
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusInactive, &scheduled, nil)},
	}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())
	s.Tick(context.Background())

	if len(links.activated) != 1 {
		t.Errorf("activated %d times, want 1", len(links.activated))
	}
	if len(links.deactivated) != 0 {
		t.Error("a link without endTime must never deactivate")
	}
}

func TestManualOnlyLinksAreSkipped(t *testing.T) {
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusInactive, nil, nil)},
	}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 0 {
		t.Error("links without scheduledTime are outside scheduler authority")
	}
}

func TestInactiveCampaignsAreSkipped(t *testing.T) {
	scheduled := t0.Add(-5 * time.Minute)
	ended := t0.Add(-time.Hour)
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{
		1: {link(10, 1, models.ComponentStatusInactive, &scheduled, nil)},
	}}
	pub := &capturePublisher{}
	campaigns := &fakeCampaigns{campaigns: []models.Campaign{
		{ID: 1, Name: "expired", EndDate: &ended},
	}}
	s := newScheduler(campaigns, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 0 {
		t.Error("links of an expired campaign must not transition")
	}
}

func TestActivationBlockedWhenHeldElsewhere(t *testing.T) {
	scheduled := t0.Add(-5 * time.Minute)
	holder := int64(2)
	links := &fakeLinks{
		byCampaign: map[int64][]models.CampaignComponent{
			1: {link(10, 1, models.ComponentStatusInactive, &scheduled, nil)},
		},
		activeHolder: &holder,
	}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1)}}, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 0 {
		t.Error("activation must be refused while another campaign holds the component")
	}
}

func TestOneCampaignFailureDoesNotStopOthers(t *testing.T) {
	scheduled := t0.Add(-5 * time.Minute)
	links := &fakeLinks{
		byCampaign: map[int64][]models.CampaignComponent{
			2: {link(20, 2, models.ComponentStatusInactive, &scheduled, nil)},
		},
		listErr: map[int64]error{1: errors.New("db timeout")},
	}
	pub := &capturePublisher{}
	campaigns := &fakeCampaigns{campaigns: []models.Campaign{activeCampaign(1), activeCampaign(2)}}
	s := newScheduler(campaigns, links, pub, t0)

	s.Tick(context.Background())

	if len(links.activated) != 1 {
		t.Errorf("campaign 2 should still be processed after campaign 1 fails, activated=%d", len(links.activated))
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	links := &fakeLinks{byCampaign: map[int64][]models.CampaignComponent{}}
	pub := &capturePublisher{}
	s := newScheduler(&fakeCampaigns{}, links, pub, t0)

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx) // no-op
	if !s.Running() {
		t.Fatal("scheduler should be running after Start")
	}

	s.Stop()
	s.Stop() // no-op
	if s.Running() {
		t.Fatal("scheduler should be stopped after Stop")
	}

	// Can be started again after a stop.
	s.Start(ctx)
	if !s.Running() {
		t.Fatal("scheduler should restart cleanly")
	}
	s.Stop()
}
