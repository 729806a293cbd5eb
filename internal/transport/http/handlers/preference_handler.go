package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/core/services"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/internal/transport/http/dto"
)

type PreferenceHandler struct {
	service ports.PreferenceService
	logger  *logger.Logger
}

func NewPreferenceHandler(service ports.PreferenceService, logger *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{service: service, logger: logger}
}

func (h *PreferenceHandler) SavePreference(c *fiber.Ctx) error {
	var req dto.SavePreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("preference_save_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if errs := req.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errs,
		})
	}

	pref, err := h.service.SavePreference(c.Context(), req.OwnerID, req.Destination, req.Preferences)
	if err != nil {
		if errors.Is(err, services.ErrPreferenceInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Errorw("preference_save_failed", "owner_id", req.OwnerID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(pref)
}

func (h *PreferenceHandler) ListPreferences(c *fiber.Ctx) error {
	ownerID := strings.TrimSpace(c.Query("owner_id"))
	if ownerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "owner_id query parameter is required",
		})
	}
	prefs, err := h.service.RecentPreferences(c.Context(), ownerID, c.QueryInt("limit", 0))
	if err != nil {
		h.logger.Errorw("preference_list_failed", "owner_id", ownerID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(prefs)
}
