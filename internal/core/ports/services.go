package ports

import (
	"context"
	"errors"

	"github.com/starrycyq/travle/internal/domain"
)

// ErrFetcherUnavailable is returned (possibly wrapped) by a PostFetcher whose
// underlying capability is missing, as opposed to a fetch that ran and failed.
var ErrFetcherUnavailable = errors.New("fetcher: capability unavailable")

// ErrInvalidFilter is returned by a VectorStore for a filter key it cannot match on.
var ErrInvalidFilter = errors.New("vector store: invalid filter key")

type PostFetcher interface {
	FetchPosts(ctx context.Context, keyword string, maxItems int, cookies map[string]string) ([]domain.RawItem, error)
}

type TextCleaner interface {
	Clean(text string) string
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
	Dimension() int
}

type TaskService interface {
	Submit(ctx context.Context, input SubmitTaskInput) (string, error)
	GetTask(ctx context.Context, taskID string) (*domain.ScrapeTask, error)
	ListTasks(ctx context.Context, ownerID string) ([]domain.ScrapeTask, error)
	TaskEvents(ctx context.Context, taskID string) ([]domain.TaskEvent, error)
}

type SubmitTaskInput struct {
	OwnerID  string
	Keywords []string
	MaxItems int
}

type SearchService interface {
	Search(ctx context.Context, input SearchInput) ([]domain.SearchResult, error)
	Info(ctx context.Context) (*CollectionInfo, error)
}

type SearchInput struct {
	Query   string
	Limit   int
	Filters map[string]string
}

type CollectionInfo struct {
	Count     int64  `json:"count"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

// ScrapeExecutor gathers raw items for every keyword of a task.
type ScrapeExecutor interface {
	Execute(ctx context.Context, task *domain.ScrapeTask) ([]domain.RawItem, error)
}

// ContentProcessor stores raw items in the vector store and returns one
// summary per item that made it. Failed items are dropped.
type ContentProcessor interface {
	Process(ctx context.Context, items []domain.RawItem, ownerID string) []domain.ProcessedItem
}

type SessionService interface {
	SaveSession(ctx context.Context, subject, sessionID string, cookies map[string]string) (string, error)
	LinkOwner(ctx context.Context, ownerID, sessionID, subject string) error
	OwnerSession(ctx context.Context, ownerID string) (*domain.LoginSession, error)
	SubjectSession(ctx context.Context, subject string) (*domain.LoginSession, error)
}

type PreferenceService interface {
	SavePreference(ctx context.Context, ownerID, destination string, prefs map[string]interface{}) (*domain.Preference, error)
	RecentPreferences(ctx context.Context, ownerID string, limit int) ([]domain.Preference, error)
}
