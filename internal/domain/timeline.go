package domain

import "time"

// Task timeline event types
const (
	EventTypeTaskCreated   = "TASK_CREATED"
	EventTypeTaskRunning   = "TASK_RUNNING"
	EventTypeTaskCompleted = "TASK_COMPLETED"
	EventTypeTaskFailed    = "TASK_FAILED"
)

// TaskEvent is an append-only record of a task status transition.
type TaskEvent struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	TaskID     string     `gorm:"size:64;not null;index" json:"task_id"`
	Type       string     `gorm:"size:50;not null" json:"type"`
	FromStatus TaskStatus `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   TaskStatus `gorm:"size:20;not null" json:"to_status"`
	Message    string     `gorm:"type:text" json:"message,omitempty"`
}

func (TaskEvent) TableName() string {
	return "task_events"
}
