package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/core/services"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/internal/transport/http/dto"
)

type SearchHandler struct {
	service ports.SearchService
	logger  *logger.Logger
}

func NewSearchHandler(service ports.SearchService, logger *logger.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("search_body_parse_failed", "error", err)
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

	results, err := h.service.Search(c.Context(), ports.SearchInput{
		Query:   req.Query,
		Limit:   req.Limit,
		Filters: req.Filters,
	})
	if err != nil {
		if errors.Is(err, services.ErrSearchInvalidInput) || errors.Is(err, ports.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Errorw("search_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(results)
}

func (h *SearchHandler) GetInfo(c *fiber.Ctx) error {
	info, err := h.service.Info(c.Context())
	if err != nil {
		h.logger.Errorw("search_info_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(info)
}
