package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/http/dto"
	"github.com/live-campaigns/backend/internal/services"
)

type EventHandler struct {
	eventService *services.EventService
	log          *zap.Logger
}

func NewEventHandler(eventService *services.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, log: log}
}

func (h *EventHandler) TriggerProduct(c *fiber.Ctx) error {
	var req dto.TriggerProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	event, err := h.eventService.TriggerProduct(c.Context(), requestBase(c), services.ProductInput{
		CampaignID:  req.CampaignID,
		ProductID:   req.ProductID,
		Name:        req.Name,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Link:        req.Link,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.TriggerEventResponse{Success: true, Event: event})
}

func (h *EventHandler) TriggerPoll(c *fiber.Ctx) error {
	var req dto.TriggerPollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	event, err := h.eventService.TriggerPoll(c.Context(), requestBase(c), services.PollInput{
		CampaignID: req.CampaignID,
		Question:   req.Question,
		Options:    req.Options,
		ImageURL:   req.ImageURL,
		Duration:   req.Duration,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.TriggerEventResponse{Success: true, Event: event})
}

func (h *EventHandler) TriggerContest(c *fiber.Ctx) error {
	var req dto.TriggerContestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	event, err := h.eventService.TriggerContest(c.Context(), requestBase(c), services.ContestInput{
		CampaignID:  req.CampaignID,
		Title:       req.Title,
		Prize:       req.Prize,
		Description: req.Description,
		EndsAt:      req.EndsAt,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.TriggerEventResponse{Success: true, Event: event})
}

// ListEvents serves the durable per-campaign log when campaignId is given,
// the in-memory recent buffer otherwise.
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	if v := c.Query("campaignId"); v != "" {
		campaignID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaignId"})
		}

		limit := 100
		if lv := c.Query("limit"); lv != "" {
			if n, err := strconv.Atoi(lv); err == nil {
				limit = n
			}
		}

		payloads, err := h.eventService.CampaignEvents(c.Context(), campaignID, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.EventsResponse{Success: true, Events: payloads})
	}

	return c.JSON(dto.EventsResponse{Success: true, Events: h.eventService.Recent()})
}
