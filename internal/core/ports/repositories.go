package ports

import (
	"context"

	"github.com/starrycyq/travle/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.ScrapeTask) error
	GetByID(ctx context.Context, taskID string) (*domain.ScrapeTask, error)
	GetByOwner(ctx context.Context, ownerID string) ([]domain.ScrapeTask, error)
	GetByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.ScrapeTask, error)
	// Transition persists task only if the stored status still equals from.
	// It returns false when another writer moved the task first.
	Transition(ctx context.Context, task *domain.ScrapeTask, from domain.TaskStatus) (bool, error)
}

type TaskEventRepository interface {
	Create(ctx context.Context, event *domain.TaskEvent) error
	GetByTask(ctx context.Context, taskID string) ([]domain.TaskEvent, error)
}

type SessionRepository interface {
	Save(ctx context.Context, subject, sessionID string, cookies map[string]string) error
	GetBySubject(ctx context.Context, subject string) (*domain.LoginSession, error)
	LinkOwner(ctx context.Context, ownerID, sessionID, subject string) error
	GetByOwner(ctx context.Context, ownerID string) (*domain.LoginSession, error)
}

type PreferenceRepository interface {
	Create(ctx context.Context, pref *domain.Preference) error
	GetRecentByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Preference, error)
}

type VectorStore interface {
	Add(ctx context.Context, doc *domain.Document) error
	Query(ctx context.Context, vector []float32, k int, filters map[string]string) ([]domain.SearchResult, error)
	Count(ctx context.Context) (int64, error)
}
