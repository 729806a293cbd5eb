// Package bootstrap wires repositories, the scraping pipeline and the services
// on top of them from a loaded configuration. Both the HTTP server and the CLI
// build their dependencies here.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/starrycyq/travle/internal/config"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/core/services"
	"github.com/starrycyq/travle/internal/infrastructure/browser"
	"github.com/starrycyq/travle/internal/infrastructure/db"
	"github.com/starrycyq/travle/internal/infrastructure/embedding"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/internal/infrastructure/nlp"
	"gorm.io/gorm"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *gorm.DB

	Tasks       ports.TaskRepository
	Events      ports.TaskEventRepository
	Preferences ports.PreferenceRepository
	SessionRepo ports.SessionRepository
	Documents   ports.VectorStore

	Browser  *browser.Manager
	Embedder ports.Embedder

	TaskService       *services.TaskService
	SessionService    *services.SessionService
	PreferenceService *services.PreferenceService
	SearchService     ports.SearchService
}

// Option adjusts how New and NewWithDB build the container.
type Option func(*options)

type options struct {
	fetcher ports.PostFetcher
}

// WithFetcher replaces the configured post fetcher. The browser is not
// created when a fetcher is given.
func WithFetcher(f ports.PostFetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// New opens the database, runs migrations and builds every component. The
// browser is not started until the first fetch.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) (*Container, error) {
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(database); err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewWithDB(cfg, log, database, opts...), nil
}

// NewWithDB builds the components on an already migrated database.
func NewWithDB(cfg *config.Config, log *logger.Logger, database *gorm.DB, opts ...Option) *Container {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config:      cfg,
		Logger:      log,
		DB:          database,
		Tasks:       db.NewTaskRepository(database, log),
		Events:      db.NewTaskEventRepository(database, log),
		Preferences: db.NewPreferenceRepository(database, log),
		SessionRepo: db.NewSessionRepository(database, log, cfg.Security.EncryptionKey),
		Documents:   db.NewDocumentStore(database, log),
		Embedder:    embedding.New(cfg.Embedding, log),
	}

	var fetcher ports.PostFetcher = browser.DisabledFetcher{}
	switch {
	case o.fetcher != nil:
		fetcher = o.fetcher
	case cfg.Scraper.BrowserEnabled:
		c.Browser = browser.NewManager(browser.ManagerConfig{
			RemoteURL: cfg.Scraper.RemoteURL,
			Headless:  cfg.Scraper.Headless,
			Logger:    log.Named("browser"),
		})
		fetcher = browser.NewXHSFetcher(browser.XHSFetcherConfig{
			Manager:  c.Browser,
			BaseURL:  cfg.Scraper.BaseURL,
			DelayMin: cfg.Scraper.DelayMin,
			DelayMax: cfg.Scraper.DelayMax,
			Logger:   log.Named("browser"),
		})
	}

	var fallback ports.PostFetcher
	if cfg.Scraper.MockFallback {
		log.Warnw("scraper_mock_fallback_enabled")
		fallback = services.NewMockFetcher()
	}

	cleaner := nlp.NewCleaner()
	executor := services.NewScrapeExecutor(services.ScrapeExecutorConfig{
		Fetcher:  fetcher,
		Sessions: c.SessionRepo,
		Fallback: fallback,
		Logger:   log.Named("worker"),
	})
	processor := services.NewContentProcessor(services.ContentProcessorConfig{
		Cleaner:  cleaner,
		Embedder: c.Embedder,
		Store:    c.Documents,
		Logger:   log,
	})

	c.TaskService = services.NewTaskService(services.TaskServiceConfig{
		Tasks:        c.Tasks,
		Events:       c.Events,
		Preferences:  c.Preferences,
		Executor:     executor,
		Processor:    processor,
		Logger:       log.Named("worker"),
		PollInterval: cfg.Scraper.PollInterval,
		TaskTimeout:  cfg.Scraper.TaskTimeout,
	})
	c.SessionService = services.NewSessionService(c.SessionRepo, log)
	c.PreferenceService = services.NewPreferenceService(c.Preferences, log)
	c.SearchService = services.NewSearchService(services.SearchServiceConfig{
		Cleaner:  cleaner,
		Embedder: c.Embedder,
		Store:    c.Documents,
		Logger:   log,
	})
	return c
}

// Close stops the worker, then releases the browser and the database.
func (c *Container) Close() error {
	var errs []error
	if c.TaskService.Running() {
		if err := c.TaskService.Stop(c.Config.Scraper.ShutdownTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Browser != nil {
		if err := c.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if err := db.Close(c.DB); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
