package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/core/services"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/internal/transport/http/dto"
)

type SessionHandler struct {
	service ports.SessionService
	logger  *logger.Logger
}

func NewSessionHandler(service ports.SessionService, logger *logger.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: logger}
}

func (h *SessionHandler) SaveSession(c *fiber.Ctx) error {
	var req dto.SaveSessionRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("session_save_body_parse_failed", "error", err)
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

	sessionID, err := h.service.SaveSession(c.Context(), req.Subject, req.SessionID, req.Cookies)
	if err != nil {
		return h.sessionError(c, "session_save_failed", err)
	}

	h.logger.Infow("session_save_success", "session_id", sessionID, "cookies", len(req.Cookies))
	return c.Status(fiber.StatusCreated).JSON(dto.SaveSessionResponse{
		SessionID: sessionID,
		Subject:   req.Subject,
	})
}

func (h *SessionHandler) LinkOwner(c *fiber.Ctx) error {
	var req dto.LinkSessionRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("session_link_body_parse_failed", "error", err)
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

	if err := h.service.LinkOwner(c.Context(), req.OwnerID, req.SessionID, req.Subject); err != nil {
		return h.sessionError(c, "session_link_failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Message: "session linked"})
}

func (h *SessionHandler) GetOwnerSession(c *fiber.Ctx) error {
	session, err := h.service.OwnerSession(c.Context(), c.Params("owner_id"))
	return h.sessionResult(c, session, err)
}

func (h *SessionHandler) GetSubjectSession(c *fiber.Ctx) error {
	session, err := h.service.SubjectSession(c.Context(), c.Params("subject"))
	return h.sessionResult(c, session, err)
}

func (h *SessionHandler) sessionResult(c *fiber.Ctx, session *domain.LoginSession, err error) error {
	if err != nil {
		return h.sessionError(c, "session_get_failed", err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) sessionError(c *fiber.Ctx, event string, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "session not found"})
	case errors.Is(err, services.ErrSessionInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	h.logger.Errorw(event, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
}
