package domain

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

const DefaultSource = "xiaohongshu"

// RawItem is a scraped post before cleaning and embedding.
type RawItem struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	Author    string    `json:"author"`
	Keyword   string    `json:"keyword"`
	Source    string    `json:"source"`
	CrawledAt time.Time `json:"crawled_at"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

// ProcessedItem is the summary kept on the task once a raw item has been stored.
type ProcessedItem struct {
	DocID          string `json:"doc_id"`
	Title          string `json:"title"`
	ContentPreview string `json:"content_preview"`
	Keyword        string `json:"keyword"`
	Source         string `json:"source"`
	VectorStored   bool   `json:"vector_stored"`
	Synthetic      bool   `json:"synthetic,omitempty"`
}

// Document is a row of the vector store.
type Document struct {
	ID        string          `gorm:"primaryKey;size:128" json:"id"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Embedding pgvector.Vector `json:"-"`
	Metadata  JSONB           `gorm:"type:text" json:"metadata"`
	OwnerID   string          `gorm:"size:255;index" json:"owner_id"`
	Keyword   string          `gorm:"size:255;index" json:"keyword"`
	Source    string          `gorm:"size:64;index" json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}

// SearchResult is a document matched by a vector query.
type SearchResult struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	Metadata JSONB   `json:"metadata"`
}
