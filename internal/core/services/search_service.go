package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

type searchService struct {
	cleaner  ports.TextCleaner
	embedder ports.Embedder
	store    ports.VectorStore
	logger   *logger.Logger
}

type SearchServiceConfig struct {
	Cleaner  ports.TextCleaner
	Embedder ports.Embedder
	Store    ports.VectorStore
	Logger   *logger.Logger
}

func NewSearchService(cfg SearchServiceConfig) ports.SearchService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &searchService{
		cleaner:  cfg.Cleaner,
		embedder: cfg.Embedder,
		store:    cfg.Store,
		logger:   log,
	}
}

// Search embeds the query the same way stored content was embedded and
// returns the closest documents.
func (s *searchService) Search(ctx context.Context, input ports.SearchInput) ([]domain.SearchResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrSearchInvalidInput)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.cleaner != nil {
		query = s.cleaner.Clean(query)
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Errorw("search_embed_failed", "error", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Query(ctx, vector, limit, input.Filters)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("search_done", "limit", limit, "filters", len(input.Filters), "results", len(results))
	return results, nil
}

func (s *searchService) Info(ctx context.Context) (*ports.CollectionInfo, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.CollectionInfo{
		Count:     count,
		Model:     s.embedder.ModelName(),
		Dimension: s.embedder.Dimension(),
	}, nil
}
