package db

import (
	"github.com/starrycyq/travle/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.ScrapeTask{},
		&domain.TaskEvent{},
		&domain.LoginSession{},
		&domain.OwnerSessionLink{},
		&domain.Preference{},
	)
	if err != nil {
		return err
	}

	// The embedding column type depends on the dialect, so documents is not auto-migrated.
	if err := createDocumentsTable(db); err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createDocumentsTable(db *gorm.DB) error {
	if isPostgres(db) {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
			return err
		}
		return db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id VARCHAR(128) PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector NOT NULL,
			metadata TEXT,
			owner_id VARCHAR(255),
			keyword VARCHAR(255),
			source VARCHAR(64),
			created_at TIMESTAMPTZ
		)`).Error
	}

	// pgvector.Vector round-trips through its "[x,y,...]" text form on SQLite.
	return db.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		metadata TEXT,
		owner_id TEXT,
		keyword TEXT,
		source TEXT,
		created_at DATETIME
	)`).Error
}

func createCustomIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_owner_keyword
		ON documents (owner_id, keyword)
	`).Error; err != nil {
		return err
	}

	// Worker claims and owner listings both filter on these.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scraper_tasks_owner_created
		ON scraper_tasks (owner_id, created_at)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_owner_session_links_owner_id_desc
		ON owner_session_links (owner_id, id)
	`).Error; err != nil {
		return err
	}

	return nil
}
