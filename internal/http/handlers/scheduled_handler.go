package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/live-campaigns/backend/internal/http/dto"
	"github.com/live-campaigns/backend/internal/models"
	"github.com/live-campaigns/backend/internal/repositories"
)

// ScheduledHandler manages the legacy one-shot scheduled entries. Their
// pending->sent transition is driven by callers of this API, not by the
// scheduler loop.
type ScheduledHandler struct {
	scheduledRepo *repositories.ScheduledComponentRepo
	campaignRepo  *repositories.CampaignRepo
	log           *zap.Logger
}

func NewScheduledHandler(scheduledRepo *repositories.ScheduledComponentRepo, campaignRepo *repositories.CampaignRepo, log *zap.Logger) *ScheduledHandler {
	return &ScheduledHandler{scheduledRepo: scheduledRepo, campaignRepo: campaignRepo, log: log}
}

func (h *ScheduledHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateScheduledComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if req.Type == "" || req.ScheduledTime.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "type and scheduledTime are required"})
	}

	if _, err := h.campaignRepo.GetByID(c.Context(), req.CampaignID); err != nil {
		return respondError(c, err)
	}

	data := req.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	sc := &models.ScheduledComponent{
		CampaignID:    req.CampaignID,
		Type:          req.Type,
		ScheduledTime: req.ScheduledTime,
		EndTime:       req.EndTime,
		Data:          data,
	}
	if err := h.scheduledRepo.Create(c.Context(), sc); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, Data: sc})
}

func (h *ScheduledHandler) List(c *fiber.Ctx) error {
	filter := repositories.ScheduledComponentFilter{}
	if v := c.Query("campaignId"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.CampaignID = &n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}

	items, err := h.scheduledRepo.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list scheduled components failed", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Data: items})
}

// UpdateStatus moves an entry to sent or cancelled, enforcing the pending-only
// transition rule.
func (h *ScheduledHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid id"})
	}

	var req dto.UpdateScheduledComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	sc, err := h.scheduledRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if !models.IsValidScheduledTransition(sc.Status, req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid transition from " + sc.Status + " to " + req.Status,
		})
	}

	if err := h.scheduledRepo.UpdateStatus(c.Context(), id, req.Status); err != nil {
		return respondError(c, err)
	}
	sc.Status = req.Status
	return c.JSON(dto.SuccessResponse{Success: true, Data: sc})
}

func (h *ScheduledHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid id"})
	}

	if err := h.scheduledRepo.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
