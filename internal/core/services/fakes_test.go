package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/starrycyq/travle/internal/domain"
)

// ==================== Repositories ====================

type fakeTaskRepo struct {
	mu        sync.Mutex
	tasks     map[string]domain.ScrapeTask
	createErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]domain.ScrapeTask{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.ScrapeTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.tasks[task.TaskID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, taskID string) (*domain.ScrapeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeTaskRepo) GetByOwner(_ context.Context, ownerID string) ([]domain.ScrapeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ScrapeTask
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTaskRepo) GetByStatus(_ context.Context, status domain.TaskStatus) ([]domain.ScrapeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ScrapeTask
	for _, t := range r.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTaskRepo) Transition(_ context.Context, task *domain.ScrapeTask, from domain.TaskStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[task.TaskID]
	if !ok || stored.Status != from {
		return false, nil
	}
	r.tasks[task.TaskID] = *task
	return true, nil
}

func (r *fakeTaskRepo) get(taskID string) domain.ScrapeTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[taskID]
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.TaskEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uint(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) GetByTask(_ context.Context, taskID string) ([]domain.TaskEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TaskEvent
	for _, e := range r.events {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePreferenceRepo struct {
	prefs []domain.Preference
	err   error
}

func (r *fakePreferenceRepo) Create(_ context.Context, pref *domain.Preference) error {
	r.prefs = append(r.prefs, *pref)
	return nil
}

func (r *fakePreferenceRepo) GetRecentByOwner(_ context.Context, ownerID string, limit int) ([]domain.Preference, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Preference
	for i := len(r.prefs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.prefs[i].OwnerID == ownerID {
			out = append(out, r.prefs[i])
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	byOwner map[string]*domain.LoginSession
	err     error
}

func (r *fakeSessionRepo) Save(context.Context, string, string, map[string]string) error { return nil }

func (r *fakeSessionRepo) GetBySubject(context.Context, string) (*domain.LoginSession, error) {
	return nil, nil
}

func (r *fakeSessionRepo) LinkOwner(context.Context, string, string, string) error { return nil }

func (r *fakeSessionRepo) GetByOwner(_ context.Context, ownerID string) (*domain.LoginSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byOwner[ownerID], nil
}

// ==================== Pipeline ports ====================

// fakeFetcher answers per keyword: an error, a number of items, or a block
// until the context ends.
type fakeFetcher struct {
	mu      sync.Mutex
	errs    map[string]error
	counts  map[string]int
	block   bool
	calls   []string
	cookies []map[string]string
}

func (f *fakeFetcher) FetchPosts(ctx context.Context, keyword string, maxItems int, cookies map[string]string) ([]domain.RawItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, keyword)
	f.cookies = append(f.cookies, cookies)
	block := f.block
	err := f.errs[keyword]
	n, ok := f.counts[keyword]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		n = maxItems
	}
	items := make([]domain.RawItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.RawItem{
			Title:   keyword + " post",
			Content: keyword + " content " + strings.Repeat("x", i),
			Keyword: keyword,
			Source:  domain.DefaultSource,
		})
	}
	return items, nil
}

func (f *fakeFetcher) keywords() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type trimCleaner struct{}

func (trimCleaner) Clean(text string) string { return strings.TrimSpace(text) }

type fakeEmbedder struct {
	failOn string
}

var errEmbed = errors.New("embedding backend down")

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errEmbed
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (e *fakeEmbedder) ModelName() string { return "fake" }
func (e *fakeEmbedder) Dimension() int    { return 3 }

type fakeVectorStore struct {
	mu   sync.Mutex
	docs []domain.Document
	err  error
	last struct {
		vector  []float32
		k       int
		filters map[string]string
	}
}

func (s *fakeVectorStore) Add(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, *doc)
	return nil
}

func (s *fakeVectorStore) Query(_ context.Context, vector []float32, k int, filters map[string]string) ([]domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last.vector, s.last.k, s.last.filters = vector, k, filters
	out := []domain.SearchResult{}
	for i, d := range s.docs {
		if i >= k {
			break
		}
		out = append(out, domain.SearchResult{ID: d.ID, Content: d.Content, Score: 1, Metadata: d.Metadata})
	}
	return out, nil
}

func (s *fakeVectorStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}
