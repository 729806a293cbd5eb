package services

import (
	"context"
	"errors"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

type scrapeExecutor struct {
	fetcher  ports.PostFetcher
	fallback ports.PostFetcher
	sessions ports.SessionRepository
	logger   *logger.Logger
}

type ScrapeExecutorConfig struct {
	Fetcher  ports.PostFetcher
	Sessions ports.SessionRepository
	// Fallback serves a keyword when Fetcher reports ports.ErrFetcherUnavailable.
	// Nil disables the fallback.
	Fallback ports.PostFetcher
	Logger   *logger.Logger
}

func NewScrapeExecutor(cfg ScrapeExecutorConfig) ports.ScrapeExecutor {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &scrapeExecutor{
		fetcher:  cfg.Fetcher,
		fallback: cfg.Fallback,
		sessions: cfg.Sessions,
		logger:   log,
	}
}

// Execute fetches each keyword in order. A failing keyword is logged and
// skipped; cancellation of ctx aborts the whole task.
func (e *scrapeExecutor) Execute(ctx context.Context, task *domain.ScrapeTask) ([]domain.RawItem, error) {
	var all []domain.RawItem

	for _, keyword := range task.Keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cookies := e.ownerCookies(ctx, task.OwnerID)
		items, err := e.fetch(ctx, keyword, task.MaxItems, cookies)
		if err != nil {
			e.logger.Warnw("scrape_keyword_failed", "task_id", task.TaskID, "keyword", keyword, "error", err)
			continue
		}

		if len(items) > task.MaxItems {
			items = items[:task.MaxItems]
		}
		for i := range items {
			if items[i].Keyword == "" {
				items[i].Keyword = keyword
			}
			if items[i].Source == "" {
				items[i].Source = domain.DefaultSource
			}
		}
		e.logger.Infow("scrape_keyword_done", "task_id", task.TaskID, "keyword", keyword, "items", len(items))
		all = append(all, items...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

func (e *scrapeExecutor) fetch(ctx context.Context, keyword string, maxItems int, cookies map[string]string) ([]domain.RawItem, error) {
	items, err := e.fetcher.FetchPosts(ctx, keyword, maxItems, cookies)
	if err == nil {
		return items, nil
	}
	if e.fallback == nil || !errors.Is(err, ports.ErrFetcherUnavailable) {
		return nil, err
	}
	e.logger.Warnw("scrape_fetcher_unavailable_using_fallback", "keyword", keyword, "error", err)
	return e.fallback.FetchPosts(ctx, keyword, maxItems, cookies)
}

// ownerCookies returns nil when the owner has no session; the fetch then runs
// unauthenticated.
func (e *scrapeExecutor) ownerCookies(ctx context.Context, ownerID string) map[string]string {
	if e.sessions == nil {
		return nil
	}
	session, err := e.sessions.GetByOwner(ctx, ownerID)
	if err != nil {
		e.logger.Warnw("scrape_session_lookup_failed", "owner_id", ownerID, "error", err)
		return nil
	}
	if session == nil {
		return nil
	}
	return session.Cookies
}
