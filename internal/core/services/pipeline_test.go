package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Queue ====================

func TestTaskQueueFIFO(t *testing.T) {
	q := newTaskQueue()
	for i := 0; i < 5; i++ {
		q.Push(fmt.Sprintf("t%d", i))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		id, ok := q.Pop(context.Background(), 10*time.Millisecond)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("t%d", i), id)
	}

	start := time.Now()
	_, ok := q.Pop(context.Background(), 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTaskQueuePopWakesOnPush(t *testing.T) {
	q := newTaskQueue()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push("late")
	}()

	id, ok := q.Pop(context.Background(), time.Second)
	require.True(t, ok)
	assert.Equal(t, "late", id)
}

func TestTaskQueuePopHonoursContext(t *testing.T) {
	q := newTaskQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.Pop(ctx, time.Second)
	assert.False(t, ok)
}

// ==================== Executor ====================

func TestExecutorCapsItemsAndFillsDefaults(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[string]int{"A": 5}}
	exec := NewScrapeExecutor(ScrapeExecutorConfig{Fetcher: fetcher})

	items, err := exec.Execute(context.Background(), &domain.ScrapeTask{TaskID: "t", OwnerID: "u1", Keywords: domain.StringList{"A"}, MaxItems: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Keyword)
	assert.Equal(t, domain.DefaultSource, items[0].Source)
}

func TestExecutorPassesOwnerCookies(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[string]int{"A": 1, "B": 1}}
	sessions := &fakeSessionRepo{byOwner: map[string]*domain.LoginSession{
		"u1": {SessionID: "S", Cookies: map[string]string{"web_session": "abc"}},
	}}
	exec := NewScrapeExecutor(ScrapeExecutorConfig{Fetcher: fetcher, Sessions: sessions})

	_, err := exec.Execute(context.Background(), &domain.ScrapeTask{OwnerID: "u1", Keywords: domain.StringList{"A", "B"}, MaxItems: 1})
	require.NoError(t, err)
	require.Len(t, fetcher.cookies, 2)
	assert.Equal(t, "abc", fetcher.cookies[0]["web_session"])
	assert.Equal(t, "abc", fetcher.cookies[1]["web_session"])
}

func TestExecutorProceedsWhenSessionLookupFails(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[string]int{"A": 1}}
	exec := NewScrapeExecutor(ScrapeExecutorConfig{Fetcher: fetcher, Sessions: &fakeSessionRepo{err: errors.New("db locked")}})

	items, err := exec.Execute(context.Background(), &domain.ScrapeTask{OwnerID: "u1", Keywords: domain.StringList{"A"}, MaxItems: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Nil(t, fetcher.cookies[0])
}

func TestExecutorFallbackOnlyWhenFetcherUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{
		"A": fmt.Errorf("launch chrome: %w", ports.ErrFetcherUnavailable),
		"B": errors.New("captcha"),
	}}
	exec := NewScrapeExecutor(ScrapeExecutorConfig{Fetcher: fetcher, Fallback: NewMockFetcher()})

	items, err := exec.Execute(context.Background(), &domain.ScrapeTask{OwnerID: "u1", Keywords: domain.StringList{"A", "B"}, MaxItems: 10})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.True(t, item.Synthetic)
		assert.Equal(t, "A", item.Keyword)
		assert.Equal(t, fmt.Sprintf("A旅游攻略 %d", i+1), item.Title)
	}
}

func TestExecutorWithoutFallbackSkipsUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{"A": ports.ErrFetcherUnavailable}}
	exec := NewScrapeExecutor(ScrapeExecutorConfig{Fetcher: fetcher})

	items, err := exec.Execute(context.Background(), &domain.ScrapeTask{OwnerID: "u1", Keywords: domain.StringList{"A"}, MaxItems: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExecutorStopsOnCancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{counts: map[string]int{"A": 1}}
	exec := NewScrapeExecutor(ScrapeExecutorConfig{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items, err := exec.Execute(ctx, &domain.ScrapeTask{OwnerID: "u1", Keywords: domain.StringList{"A"}, MaxItems: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, items)
	assert.Empty(t, fetcher.keywords())
}

func TestMockFetcherCapsAtThree(t *testing.T) {
	m := NewMockFetcher()

	items, err := m.FetchPosts(context.Background(), "成都", 2, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = m.FetchPosts(context.Background(), "成都", 10, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, mockAuthor, items[0].Author)
	assert.Equal(t, domain.DefaultSource, items[0].Source)

	items, err = m.FetchPosts(context.Background(), "成都", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// ==================== Processor ====================

func TestProcessorDropsFailedItemsAndKeepsOrder(t *testing.T) {
	store := &fakeVectorStore{}
	proc := NewContentProcessor(ContentProcessorConfig{
		Cleaner:  trimCleaner{},
		Embedder: &fakeEmbedder{failOn: "bad"},
		Store:    store,
	})

	raw := []domain.RawItem{
		{Title: "one", Content: "first", Keyword: "A"},
		{Title: "two", Content: "bad one", Keyword: "A"},
		{Title: "three", Content: "third", Keyword: "B", Synthetic: true},
	}
	out := proc.Process(context.Background(), raw, "u1")

	require.Len(t, out, 2)
	assert.Equal(t, "one", out[0].Title)
	assert.Equal(t, "three", out[1].Title)
	assert.True(t, out[1].Synthetic)
	for _, item := range out {
		assert.Regexp(t, `^doc_\d+_[0-9a-f]{8}$`, item.DocID)
		assert.True(t, item.VectorStored)
		assert.Equal(t, domain.DefaultSource, item.Source)
	}

	require.Len(t, store.docs, 2)
	doc := store.docs[0]
	assert.Equal(t, "u1", doc.OwnerID)
	assert.Equal(t, "first", doc.Content)
	assert.Equal(t, "u1", doc.Metadata["owner_id"])
	assert.Equal(t, "one", doc.Metadata["title"])
	assert.NotEmpty(t, doc.Metadata["processed_at"])
}

func TestProcessorDropsItemsTheStoreRejects(t *testing.T) {
	proc := NewContentProcessor(ContentProcessorConfig{
		Cleaner:  trimCleaner{},
		Embedder: &fakeEmbedder{},
		Store:    &fakeVectorStore{err: errors.New("disk full")},
	})

	out := proc.Process(context.Background(), []domain.RawItem{{Title: "a", Content: "x"}}, "u1")
	assert.Empty(t, out)
}

func TestPreviewTruncatesByRune(t *testing.T) {
	short := strings.Repeat("景", 200)
	assert.Equal(t, short, preview(short))

	long := strings.Repeat("景", 201)
	p := preview(long)
	assert.Equal(t, strings.Repeat("景", 200)+"...", p)
}

// ==================== Search & sessions ====================

func TestSearchServiceDefaultsAndValidation(t *testing.T) {
	store := &fakeVectorStore{docs: []domain.Document{{ID: "doc_1", Content: "成都"}}}
	svc := NewSearchService(SearchServiceConfig{Cleaner: trimCleaner{}, Embedder: &fakeEmbedder{}, Store: store})

	_, err := svc.Search(context.Background(), ports.SearchInput{Query: "  "})
	assert.ErrorIs(t, err, ErrSearchInvalidInput)

	results, err := svc.Search(context.Background(), ports.SearchInput{Query: " 成都 ", Filters: map[string]string{"keyword": "成都"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, defaultSearchLimit, store.last.k)
	assert.Equal(t, "成都", store.last.filters["keyword"])

	_, err = svc.Search(context.Background(), ports.SearchInput{Query: "x", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxSearchLimit, store.last.k)

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, info.Count)
	assert.Equal(t, "fake", info.Model)
	assert.Equal(t, 3, info.Dimension)
}

func TestSessionServiceGeneratesSessionID(t *testing.T) {
	svc := NewSessionService(&fakeSessionRepo{}, nil)

	id, err := svc.SaveSession(context.Background(), "138", "", map[string]string{"a": "1"})
	require.NoError(t, err)
	assert.Regexp(t, `^sess_[0-9a-f]{32}$`, id)

	_, err = svc.SaveSession(context.Background(), "", "S", nil)
	assert.ErrorIs(t, err, ErrSessionInvalidInput)

	assert.ErrorIs(t, svc.LinkOwner(context.Background(), "u1", "", "138"), ErrSessionInvalidInput)

	_, err = svc.OwnerSession(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPreferenceServiceFeedsDefaultKeywords(t *testing.T) {
	repo := &fakePreferenceRepo{}
	prefs := NewPreferenceService(repo, nil)

	_, err := prefs.SavePreference(context.Background(), " ", "大理", nil)
	assert.ErrorIs(t, err, ErrPreferenceInvalidInput)

	_, err = prefs.SavePreference(context.Background(), "u1", "大理", map[string]interface{}{"budget": "low"})
	require.NoError(t, err)
	_, err = prefs.SavePreference(context.Background(), "u1", " 丽江 ", nil)
	require.NoError(t, err)

	recent, err := prefs.RecentPreferences(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "丽江", recent[0].Destination)

	svc := NewTaskService(TaskServiceConfig{Tasks: newFakeTaskRepo(), Events: &fakeEventRepo{}, Preferences: repo})
	assert.Equal(t, domain.StringList{"丽江", "大理"}, svc.resolveKeywords(context.Background(), "u1", nil))
}
