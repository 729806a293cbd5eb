package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starrycyq/travle/internal/config"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/core/services"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/db"
	"github.com/starrycyq/travle/internal/infrastructure/embedding"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "travle.db")},
		Embedding: config.EmbeddingConfig{Provider: "hash", Dimension: 32},
		Scraper: config.ScraperConfig{
			MaxItems:        3,
			PollInterval:    10 * time.Millisecond,
			ShutdownTimeout: time.Second,
			TaskTimeout:     10 * time.Second,
		},
	}
}

// blockingFetcher holds every fetch until its context ends.
type blockingFetcher struct{}

func (blockingFetcher) FetchPosts(ctx context.Context, _ string, _ int, _ map[string]string) ([]domain.RawItem, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func waitTerminal(t *testing.T, c *Container, taskID string) *domain.ScrapeTask {
	t.Helper()
	var task *domain.ScrapeTask
	require.Eventually(t, func() bool {
		var err error
		task, err = c.TaskService.GetTask(context.Background(), taskID)
		return err == nil && task.Status.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return task
}

func TestPipelineWithMockFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scraper.MockFallback = true

	c, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Browser)
	assert.Equal(t, embedding.HashModelName, c.Embedder.ModelName())

	require.NoError(t, c.TaskService.Start(context.Background()))
	taskID, err := c.TaskService.Submit(context.Background(), ports.SubmitTaskInput{OwnerID: "u1", Keywords: []string{"西安"}, MaxItems: 2})
	require.NoError(t, err)

	task := waitTerminal(t, c, taskID)
	require.Equal(t, domain.TaskStatusCompleted, task.Status)
	require.Len(t, task.Results, 2)
	assert.True(t, task.Results[0].Synthetic)

	count, err := c.Documents.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestPipelineWithoutFetcherFails(t *testing.T) {
	c, err := New(testConfig(t), logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.TaskService.Start(context.Background()))
	taskID, err := c.TaskService.Submit(context.Background(), ports.SubmitTaskInput{OwnerID: "u1", MaxItems: 2})
	require.NoError(t, err)

	task := waitTerminal(t, c, taskID)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	require.NotNil(t, task.Error)
	assert.Equal(t, services.FailureEmptyResult, *task.Error)
	assert.Equal(t, domain.StringList(services.DefaultKeywords), task.Keywords)
}

func TestBrowserManagerIsLazy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scraper.BrowserEnabled = true
	cfg.Scraper.Headless = true

	c, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c.Browser)
	assert.NoError(t, c.Close())
}

func TestCloseAfterShutdownTimeoutPersistsFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scraper.ShutdownTimeout = 50 * time.Millisecond

	c, err := New(cfg, logger.NewNop(), WithFetcher(blockingFetcher{}))
	require.NoError(t, err)

	require.NoError(t, c.TaskService.Start(context.Background()))
	taskID, err := c.TaskService.Submit(context.Background(), ports.SubmitTaskInput{OwnerID: "u1", Keywords: []string{"西安"}, MaxItems: 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		task, err := c.TaskService.GetTask(context.Background(), taskID)
		return err == nil && task.Status == domain.TaskStatusRunning
	}, 5*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, c.Close(), services.ErrShutdownTimeout)

	reopened, err := db.Open(cfg.Database)
	require.NoError(t, err)
	defer db.Close(reopened)

	task, err := db.NewTaskRepository(reopened, logger.NewNop()).GetByID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	require.NotNil(t, task.Error)
	assert.Equal(t, context.Canceled.Error(), *task.Error)
	assert.NotNil(t, task.CompletedAt)
}
