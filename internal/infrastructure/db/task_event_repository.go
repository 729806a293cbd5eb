package db

import (
	"context"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskEventRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskEventRepository(db *gorm.DB, log *logger.Logger) ports.TaskEventRepository {
	return &taskEventRepository{
		db:  db,
		log: log,
	}
}

func (r *taskEventRepository) Create(ctx context.Context, event *domain.TaskEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.log.Errorw("task_event_repo_create_failed", "task_id", event.TaskID, "type", event.Type, "error", err)
		return err
	}
	r.log.Debugw("task_event_repo_create_ok", "id", event.ID, "task_id", event.TaskID, "type", event.Type)
	return nil
}

// GetByTask returns the events of a task in the order they were recorded.
func (r *taskEventRepository) GetByTask(ctx context.Context, taskID string) ([]domain.TaskEvent, error) {
	var events []domain.TaskEvent
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id asc").
		Find(&events).Error
	if err != nil {
		r.log.Errorw("task_event_repo_get_by_task_failed", "task_id", taskID, "error", err)
		return nil, err
	}
	return events, nil
}
