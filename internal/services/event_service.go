package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/events"
	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/urlnorm"
)

type CampaignStore interface {
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
}

type EventLog interface {
	Append(ctx context.Context, campaignID int64, e *models.Event) error
	ListByCampaign(ctx context.Context, campaignID int64, limit int) ([]json.RawMessage, error)
}

// EventService runs the trigger pipeline: existence check, URL normalization,
// payload construction, schema validation, persistence, broadcast. The recent
// ring buffer backs the legacy ungrouped event feed.
type EventService struct {
	campaigns CampaignStore
	eventLog  EventLog
	publisher events.Publisher
	validate  *validator.Validate
	log       *zap.Logger

	bufferSize int
	mu         sync.Mutex
	recent     []*models.Event
}

func NewEventService(campaigns CampaignStore, eventLog EventLog, publisher events.Publisher, bufferSize int, log *zap.Logger) *EventService {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventService{
		campaigns:  campaigns,
		eventLog:   eventLog,
		publisher:  publisher,
		validate:   validator.New(),
		log:        log,
		bufferSize: bufferSize,
	}
}

type ProductInput struct {
	CampaignID  *int64
	ProductID   string
	Name        string
	Price       string
	ImageURL    string
	Link        string
	Description string
}

// PollInput carries raw JSON for the fields that arrive in more than one
// legacy shape: options as a comma-separated string or an object list, and
// duration as a string or a number.
type PollInput struct {
	CampaignID *int64
	Question   string
	Options    json.RawMessage
	ImageURL   string
	Duration   json.RawMessage
}

type ContestInput struct {
	CampaignID  *int64
	Title       string
	Prize       string
	Description string
	EndsAt      *int64
	ImageURL    string
}

func (s *EventService) TriggerProduct(ctx context.Context, base *url.URL, in ProductInput) (*models.Event, error) {
	data := models.ProductData{
		ProductID:   in.ProductID,
		Name:        in.Name,
		Price:       in.Price,
		ImageURL:    urlnorm.Normalize(in.ImageURL, base),
		Link:        urlnorm.Normalize(in.Link, base),
		Description: in.Description,
	}
	return s.trigger(ctx, base, in.CampaignID, models.EventTypeProduct, data)
}

func (s *EventService) TriggerPoll(ctx context.Context, base *url.URL, in PollInput) (*models.Event, error) {
	options, err := parsePollOptions(in.Options)
	if err != nil {
		return nil, err
	}
	for i := range options {
		options[i].ImageURL = urlnorm.Normalize(options[i].ImageURL, base)
	}

	duration, err := coerceDuration(in.Duration)
	if err != nil {
		return nil, err
	}

	data := models.PollData{
		Question: in.Question,
		Options:  options,
		ImageURL: urlnorm.Normalize(in.ImageURL, base),
		Duration: duration,
	}
	return s.trigger(ctx, base, in.CampaignID, models.EventTypePoll, data)
}

func (s *EventService) TriggerContest(ctx context.Context, base *url.URL, in ContestInput) (*models.Event, error) {
	data := models.ContestData{
		Title:       in.Title,
		Prize:       in.Prize,
		Description: in.Description,
		EndsAt:      in.EndsAt,
		ImageURL:    urlnorm.Normalize(in.ImageURL, base),
	}
	return s.trigger(ctx, base, in.CampaignID, models.EventTypeContest, data)
}

// trigger is the shared tail of the pipeline. The campaign existence check
// runs before any side effect; validation runs on the fully constructed
// payload; only then does the event hit the buffer, the log and the wire.
func (s *EventService) trigger(ctx context.Context, base *url.URL, campaignID *int64, eventType string, data models.EventData) (*models.Event, error) {
	var campaignLogo string
	if campaignID != nil {
		campaign, err := s.campaigns.GetByID(ctx, *campaignID)
		if err != nil {
			return nil, err
		}
		if campaign.Logo != nil {
			campaignLogo = urlnorm.Normalize(*campaign.Logo, base)
		}
	}

	event := &models.Event{
		ID:           uuid.New().String(),
		Type:         eventType,
		CampaignID:   campaignID,
		CampaignLogo: campaignLogo,
		Data:         data,
		Timestamp:    time.Now().UnixMilli(),
	}

	if err := event.Validate(s.validate); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	s.buffer(event)

	if campaignID != nil {
		if err := s.eventLog.Append(ctx, *campaignID, event); err != nil {
			return nil, err
		}
	}

	if err := s.broadcast(ctx, event); err != nil {
		// The event is persisted; delivery is best-effort.
		s.log.Error("event broadcast failed", zap.String("event_id", event.ID), zap.Error(err))
	}

	return event, nil
}

func (s *EventService) broadcast(ctx context.Context, event *models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	room := events.LegacyRoom
	if event.CampaignID != nil {
		room = *event.CampaignID
	}
	return s.publisher.Publish(ctx, events.Envelope{Room: room, Payload: payload})
}

func (s *EventService) buffer(event *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, event)
	if len(s.recent) > s.bufferSize {
		s.recent = s.recent[len(s.recent)-s.bufferSize:]
	}
}

// Recent returns a copy of the in-memory buffer, oldest first.
func (s *EventService) Recent() []*models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Event(nil), s.recent...)
}

// CampaignEvents returns the durable per-campaign log.
func (s *EventService) CampaignEvents(ctx context.Context, campaignID int64, limit int) ([]json.RawMessage, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.eventLog.ListByCampaign(ctx, campaignID, limit)
}

// parsePollOptions accepts either the object-list form or the legacy
// comma-separated string (split, trimmed, empties dropped, no images).
func parsePollOptions(raw json.RawMessage) ([]models.PollOption, error) {
	if len(raw) == 0 {
		return nil, validationErrorf("poll options are required")
	}

	var list []models.PollOption
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var legacy string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, validationErrorf("poll options must be a list or a comma-separated string")
	}

	var options []models.PollOption
	for _, part := range strings.Split(legacy, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		options = append(options, models.PollOption{Text: part})
	}
	return options, nil
}

// coerceDuration accepts a JSON number or a numeric string, in seconds.
func coerceDuration(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, validationErrorf("poll duration must be a number")
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, validationErrorf("poll duration must be a number")
	}
	return int(n), nil
}
