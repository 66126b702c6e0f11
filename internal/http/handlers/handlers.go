package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/live-campaigns/backend/internal/http/dto"
	"github.com/live-campaigns/backend/internal/repositories"
	"github.com/live-campaigns/backend/internal/services"
)

// requestBase reconstructs the scheme://host origin of the current request,
// used to normalize relative URLs in operator payloads.
func requestBase(c *fiber.Ctx) *url.URL {
	return &url.URL{Scheme: c.Protocol(), Host: c.Hostname()}
}

// respondError maps service/repository errors onto the API's error taxonomy.
func respondError(c *fiber.Ctx, err error) error {
	var conflict *services.ComponentConflictError
	var verr *services.ValidationError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ConflictResponse{
			Error:                 conflict.Error(),
			ConflictingCampaignID: conflict.CampaignID,
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: verr.Reason})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
