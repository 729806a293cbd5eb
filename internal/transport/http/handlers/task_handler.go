package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/core/services"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/internal/transport/http/dto"
)

type TaskHandler struct {
	service         ports.TaskService
	logger          *logger.Logger
	defaultMaxItems int
}

func NewTaskHandler(service ports.TaskService, logger *logger.Logger, defaultMaxItems int) *TaskHandler {
	return &TaskHandler{service: service, logger: logger, defaultMaxItems: defaultMaxItems}
}

func (h *TaskHandler) SubmitTask(c *fiber.Ctx) error {
	var req dto.SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_submit_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.logger.Warnw("task_submit_validation_failed", "details", errs)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errs,
		})
	}

	taskID, err := h.service.Submit(c.Context(), ports.SubmitTaskInput{
		OwnerID:  req.OwnerID,
		Keywords: req.Keywords,
		MaxItems: req.GetMaxItems(h.defaultMaxItems),
	})
	if err != nil {
		if errors.Is(err, services.ErrTaskInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Errorw("task_submit_failed", "owner_id", req.OwnerID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to submit task",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.SubmitTaskResponse{
		TaskID: taskID,
		Status: domain.TaskStatusPending,
	})
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	task, err := h.service.GetTask(c.Context(), taskID)
	if err != nil {
		return h.taskError(c, "task_get_failed", taskID, err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ownerID := strings.TrimSpace(c.Query("owner_id"))
	if ownerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "owner_id query parameter is required",
		})
	}

	tasks, err := h.service.ListTasks(c.Context(), ownerID)
	if err != nil {
		h.logger.Errorw("task_list_failed", "owner_id", ownerID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.TasksToResponse(tasks))
}

// GetTaskEvents returns the transition history of a task, oldest first.
func (h *TaskHandler) GetTaskEvents(c *fiber.Ctx) error {
	taskID := c.Params("id")
	events, err := h.service.TaskEvents(c.Context(), taskID)
	if err != nil {
		return h.taskError(c, "task_events_failed", taskID, err)
	}
	return c.JSON(events)
}

func (h *TaskHandler) taskError(c *fiber.Ctx, event, taskID string, err error) error {
	if errors.Is(err, services.ErrTaskNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "task not found"})
	}
	h.logger.Errorw(event, "task_id", taskID, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
}
