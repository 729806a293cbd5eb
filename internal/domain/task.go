package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// ScrapeTask is one unit of scraping work spanning one or more keywords.
type ScrapeTask struct {
	TaskID      string            `gorm:"primaryKey;size:64" json:"task_id"`
	OwnerID     string            `gorm:"size:255;not null;index" json:"owner_id"`
	Keywords    StringList        `gorm:"type:text;not null" json:"keywords"`
	MaxItems    int               `gorm:"not null" json:"max_items"`
	Status      TaskStatus        `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	StartedAt   *time.Time        `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at"`
	Results     ProcessedItemList `gorm:"type:text" json:"results"`
	Error       *string           `gorm:"type:text" json:"error"`
}

func (ScrapeTask) TableName() string {
	return "scraper_tasks"
}

// MarkRunning moves a pending task to running.
func (t *ScrapeTask) MarkRunning(now time.Time) {
	t.Status = TaskStatusRunning
	t.StartedAt = &now
}

// MarkCompleted records the processed results of a running task.
func (t *ScrapeTask) MarkCompleted(now time.Time, results []ProcessedItem) {
	if results == nil {
		results = []ProcessedItem{}
	}
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.Results = results
	t.Error = nil
}

// MarkFailed records the failure reason of a running task.
func (t *ScrapeTask) MarkFailed(now time.Time, reason string) {
	t.Status = TaskStatusFailed
	t.CompletedAt = &now
	t.Results = nil
	t.Error = &reason
}
