package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

const previewRunes = 200

type contentProcessor struct {
	cleaner  ports.TextCleaner
	embedder ports.Embedder
	store    ports.VectorStore
	logger   *logger.Logger
}

type ContentProcessorConfig struct {
	Cleaner  ports.TextCleaner
	Embedder ports.Embedder
	Store    ports.VectorStore
	Logger   *logger.Logger
}

func NewContentProcessor(cfg ContentProcessorConfig) ports.ContentProcessor {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &contentProcessor{
		cleaner:  cfg.Cleaner,
		embedder: cfg.Embedder,
		store:    cfg.Store,
		logger:   log,
	}
}

func (p *contentProcessor) Process(ctx context.Context, items []domain.RawItem, ownerID string) []domain.ProcessedItem {
	processed := make([]domain.ProcessedItem, 0, len(items))
	for _, item := range items {
		out, err := p.processOne(ctx, item, ownerID)
		if err != nil {
			p.logger.Warnw("content_item_dropped", "title", item.Title, "keyword", item.Keyword, "error", err)
			continue
		}
		processed = append(processed, out)
	}
	p.logger.Infow("content_processed", "owner_id", ownerID, "input", len(items), "stored", len(processed))
	return processed
}

func (p *contentProcessor) processOne(ctx context.Context, item domain.RawItem, ownerID string) (domain.ProcessedItem, error) {
	clean := p.cleaner.Clean(item.Content)

	vector, err := p.embedder.Embed(ctx, clean)
	if err != nil {
		return domain.ProcessedItem{}, fmt.Errorf("embed: %w", err)
	}

	source := item.Source
	if source == "" {
		source = domain.DefaultSource
	}
	images := item.Images
	if images == nil {
		images = []string{}
	}
	processedAt := now()
	crawledAt := item.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = processedAt
	}

	doc := &domain.Document{
		ID:        newDocID(processedAt, item.Keyword+"|"+item.Title+"|"+clean),
		Content:   clean,
		Embedding: pgvector.NewVector(vector),
		Metadata: domain.JSONB{
			"owner_id":     ownerID,
			"source":       source,
			"keyword":      item.Keyword,
			"author":       item.Author,
			"title":        item.Title,
			"images":       images,
			"crawled_at":   crawledAt.Format(time.RFC3339),
			"processed_at": processedAt.Format(time.RFC3339),
			"synthetic":    item.Synthetic,
		},
		OwnerID:   ownerID,
		Keyword:   item.Keyword,
		Source:    source,
		CreatedAt: processedAt,
	}
	if err := p.store.Add(ctx, doc); err != nil {
		return domain.ProcessedItem{}, fmt.Errorf("store: %w", err)
	}

	return domain.ProcessedItem{
		DocID:          doc.ID,
		Title:          item.Title,
		ContentPreview: preview(clean),
		Keyword:        item.Keyword,
		Source:         source,
		VectorStored:   true,
		Synthetic:      item.Synthetic,
	}, nil
}

// newDocID is doc_<unix nanos>_<8 hex of the sha256 of key>. The nanosecond
// stamp keeps identical texts processed in sequence apart.
func newDocID(at time.Time, key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("doc_%d_%s", at.UnixNano(), hex.EncodeToString(sum[:4]))
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
