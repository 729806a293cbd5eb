package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/pgvector/pgvector-go"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyEmbedding = errors.New("vector store: empty embedding")
	ErrInvalidFilter  = ports.ErrInvalidFilter
)

var filterKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Filter keys that map onto real columns; anything else is looked up in metadata.
var documentColumns = map[string]bool{
	"owner_id": true,
	"keyword":  true,
	"source":   true,
}

type documentStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewDocumentStore keeps embeddings in the documents table. PostgreSQL ranks
// with pgvector's cosine distance operator; SQLite ranks in process.
func NewDocumentStore(db *gorm.DB, log *logger.Logger) ports.VectorStore {
	return &documentStore{db: db, log: log}
}

func (s *documentStore) Add(ctx context.Context, doc *domain.Document) error {
	if len(doc.Embedding.Slice()) == 0 {
		return ErrEmptyEmbedding
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(doc).Error
	if err != nil {
		s.log.Errorw("vector_store_add_failed", "doc_id", doc.ID, "error", err)
		return err
	}
	s.log.Debugw("vector_store_add_ok", "doc_id", doc.ID, "keyword", doc.Keyword)
	return nil
}

func (s *documentStore) Query(ctx context.Context, vector []float32, k int, filters map[string]string) ([]domain.SearchResult, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyEmbedding
	}
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	q, err := s.applyFilters(s.db.WithContext(ctx).Model(&domain.Document{}), filters)
	if err != nil {
		return nil, err
	}

	if isPostgres(s.db) {
		return s.queryPostgres(q, vector, k)
	}
	return s.queryInProcess(q, vector, k)
}

func (s *documentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Document{}).Count(&n).Error; err != nil {
		s.log.Errorw("vector_store_count_failed", "error", err)
		return 0, err
	}
	return n, nil
}

func (s *documentStore) queryPostgres(q *gorm.DB, vector []float32, k int) ([]domain.SearchResult, error) {
	vec := pgvector.NewVector(vector)
	results := []domain.SearchResult{}
	err := q.
		Select("id, content, metadata, 1 - (embedding <=> ?) AS score", vec).
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{vec}}).
		Limit(k).
		Scan(&results).Error
	if err != nil {
		s.log.Errorw("vector_store_query_failed", "error", err)
		return nil, err
	}
	return results, nil
}

func (s *documentStore) queryInProcess(q *gorm.DB, vector []float32, k int) ([]domain.SearchResult, error) {
	var docs []domain.Document
	if err := q.Select("id, content, embedding, metadata").Find(&docs).Error; err != nil {
		s.log.Errorw("vector_store_query_failed", "error", err)
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(docs))
	for _, doc := range docs {
		emb := doc.Embedding.Slice()
		if len(emb) != len(vector) {
			s.log.Warnw("vector_store_dimension_mismatch", "doc_id", doc.ID, "want", len(vector), "got", len(emb))
			continue
		}
		results = append(results, domain.SearchResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Score:    cosineSimilarity(vector, emb),
			Metadata: doc.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *documentStore) applyFilters(q *gorm.DB, filters map[string]string) (*gorm.DB, error) {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filters[key]
		if !filterKeyPattern.MatchString(key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, key)
		}
		switch {
		case documentColumns[key]:
			q = q.Where(key+" = ?", value)
		case isPostgres(s.db):
			q = q.Where("(metadata::jsonb ->> ?) = ?", key, value)
		default:
			q = q.Where("CAST(json_extract(metadata, ?) AS TEXT) = ?", "$."+key, value)
		}
	}
	return q, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
