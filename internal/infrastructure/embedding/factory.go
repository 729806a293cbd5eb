package embedding

import (
	"github.com/starrycyq/travle/internal/config"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

// New builds the configured embedder. Without an API key the openai provider
// degrades to the hash embedder so the pipeline still runs offline.
func New(cfg config.EmbeddingConfig, log *logger.Logger) ports.Embedder {
	switch {
	case cfg.Provider == "hash":
		log.Infow("embedding_provider_selected", "provider", "hash", "dimension", cfg.Dimension)
		return NewHashEmbedder(cfg.Dimension)
	case cfg.APIKey == "":
		log.Warnw("embedding_api_key_missing_using_hash", "dimension", cfg.Dimension)
		return NewHashEmbedder(cfg.Dimension)
	default:
		log.Infow("embedding_provider_selected", "provider", "openai", "model", cfg.Model, "dimension", cfg.Dimension)
		return NewOpenAIEmbedder(cfg.APIKey,
			WithModel(cfg.Model),
			WithDimension(cfg.Dimension),
			WithBaseURL(cfg.BaseURL),
		)
	}
}
