package db

import (
	"context"
	"errors"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.ScrapeTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "task_id", task.TaskID, "owner_id", task.OwnerID, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "task_id", task.TaskID, "owner_id", task.OwnerID)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, taskID string) (*domain.ScrapeTask, error) {
	var task domain.ScrapeTask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorw("task_repo_get_failed", "task_id", taskID, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetByOwner(ctx context.Context, ownerID string) ([]domain.ScrapeTask, error) {
	var tasks []domain.ScrapeTask
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("task_repo_get_by_owner_failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	return tasks, nil
}

// GetByStatus returns tasks oldest first.
func (r *taskRepository) GetByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.ScrapeTask, error) {
	var tasks []domain.ScrapeTask
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("task_repo_get_by_status_failed", "status", status, "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Transition(ctx context.Context, task *domain.ScrapeTask, from domain.TaskStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ScrapeTask{}).
		Where("task_id = ? AND status = ?", task.TaskID, from).
		Updates(map[string]interface{}{
			"status":       task.Status,
			"started_at":   task.StartedAt,
			"completed_at": task.CompletedAt,
			"results":      task.Results,
			"error":        task.Error,
		})
	if result.Error != nil {
		r.log.Errorw("task_repo_transition_failed", "task_id", task.TaskID, "from", from, "to", task.Status, "error", result.Error)
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		r.log.Warnw("task_repo_transition_conflict", "task_id", task.TaskID, "from", from, "to", task.Status)
		return false, nil
	}
	r.log.Infow("task_repo_transition_ok", "task_id", task.TaskID, "from", from, "to", task.Status)
	return true, nil
}
