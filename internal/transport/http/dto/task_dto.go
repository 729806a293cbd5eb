package dto

import (
	"strings"

	"github.com/starrycyq/travle/internal/domain"
)

const maxKeywords = 20

type SubmitTaskRequest struct {
	OwnerID  string   `json:"owner_id" validate:"required"`
	Keywords []string `json:"keywords,omitempty"`
	MaxItems *int     `json:"max_items,omitempty"`
}

func (r *SubmitTaskRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.OwnerID) == "" {
		errors = append(errors, "owner_id is required")
	}
	if len(r.Keywords) > maxKeywords {
		errors = append(errors, "at most 20 keywords are allowed")
	}
	if r.MaxItems != nil && *r.MaxItems < 0 {
		errors = append(errors, "max_items must not be negative")
	}

	return errors
}

// GetMaxItems falls back to def when the request leaves max_items out.
func (r *SubmitTaskRequest) GetMaxItems(def int) int {
	if r.MaxItems == nil {
		return def
	}
	return *r.MaxItems
}

type SubmitTaskResponse struct {
	TaskID string            `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
}

type TaskResponse struct {
	TaskID      string                 `json:"task_id"`
	OwnerID     string                 `json:"owner_id"`
	Keywords    []string               `json:"keywords"`
	MaxItems    int                    `json:"max_items"`
	Status      domain.TaskStatus      `json:"status"`
	CreatedAt   string                 `json:"created_at"`
	StartedAt   *string                `json:"started_at"`
	CompletedAt *string                `json:"completed_at"`
	Results     []domain.ProcessedItem `json:"results"`
	Error       *string                `json:"error"`
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func TaskToResponse(task *domain.ScrapeTask) TaskResponse {
	resp := TaskResponse{
		TaskID:    task.TaskID,
		OwnerID:   task.OwnerID,
		Keywords:  []string(task.Keywords),
		MaxItems:  task.MaxItems,
		Status:    task.Status,
		CreatedAt: task.CreatedAt.UTC().Format(timeLayout),
		Error:     task.Error,
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if task.StartedAt != nil {
		s := task.StartedAt.UTC().Format(timeLayout)
		resp.StartedAt = &s
	}
	if task.CompletedAt != nil {
		s := task.CompletedAt.UTC().Format(timeLayout)
		resp.CompletedAt = &s
	}
	// Results stay null unless the task completed.
	if task.Status == domain.TaskStatusCompleted {
		resp.Results = []domain.ProcessedItem(task.Results)
		if resp.Results == nil {
			resp.Results = []domain.ProcessedItem{}
		}
	}
	return resp
}

func TasksToResponse(tasks []domain.ScrapeTask) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = TaskToResponse(&tasks[i])
	}
	return responses
}
