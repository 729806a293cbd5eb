package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/pkg/utils/crypto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRepository struct {
	db            *gorm.DB
	log           *logger.Logger
	encryptionKey string
}

// NewSessionRepository stores cookies as JSON, sealed with encryptionKey when
// it is non-empty.
func NewSessionRepository(db *gorm.DB, log *logger.Logger, encryptionKey string) ports.SessionRepository {
	return &sessionRepository{db: db, log: log, encryptionKey: encryptionKey}
}

func (r *sessionRepository) Save(ctx context.Context, subject, sessionID string, cookies map[string]string) error {
	data, err := r.encodeCookies(cookies)
	if err != nil {
		r.log.Errorw("session_repo_encode_failed", "session_id", sessionID, "error", err)
		return err
	}

	now := time.Now().UTC()
	session := &domain.LoginSession{
		Subject:   subject,
		SessionID: sessionID,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject", "cookies", "updated_at"}),
	}).Create(session).Error
	if err != nil {
		r.log.Errorw("session_repo_save_failed", "subject", subject, "session_id", sessionID, "error", err)
		return err
	}
	r.log.Infow("session_repo_save_ok", "subject", subject, "session_id", sessionID, "cookie_count", len(cookies))
	return nil
}

// GetBySubject returns the most recently created session of subject.
func (r *sessionRepository) GetBySubject(ctx context.Context, subject string) (*domain.LoginSession, error) {
	var session domain.LoginSession
	err := r.db.WithContext(ctx).
		Where("subject = ?", subject).
		Order("created_at desc").
		Order("id desc").
		Take(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorw("session_repo_get_by_subject_failed", "subject", subject, "error", err)
		return nil, err
	}
	if err := r.hydrate(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) LinkOwner(ctx context.Context, ownerID, sessionID, subject string) error {
	link := &domain.OwnerSessionLink{
		OwnerID:   ownerID,
		SessionID: sessionID,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		r.log.Errorw("session_repo_link_failed", "owner_id", ownerID, "session_id", sessionID, "error", err)
		return err
	}
	r.log.Infow("session_repo_link_ok", "owner_id", ownerID, "session_id", sessionID)
	return nil
}

// GetByOwner resolves the owner's links to the session created most recently.
// Among links to the same session the newest link wins.
func (r *sessionRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.LoginSession, error) {
	var session domain.LoginSession
	err := r.db.WithContext(ctx).
		Table("login_sessions AS s").
		Select("s.*").
		Joins("JOIN owner_session_links AS l ON l.session_id = s.session_id").
		Where("l.owner_id = ?", ownerID).
		Order("s.created_at DESC").
		Order("l.id DESC").
		Take(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorw("session_repo_get_by_owner_failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	if err := r.hydrate(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) encodeCookies(cookies map[string]string) (string, error) {
	if cookies == nil {
		cookies = map[string]string{}
	}
	b, err := json.Marshal(cookies)
	if err != nil {
		return "", err
	}
	if r.encryptionKey == "" {
		return string(b), nil
	}
	return crypto.Encrypt(string(b), r.encryptionKey)
}

func (r *sessionRepository) hydrate(session *domain.LoginSession) error {
	raw := session.Data
	// Rows written before a key was configured are still plain JSON.
	if r.encryptionKey != "" && !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		plain, err := crypto.Decrypt(raw, r.encryptionKey)
		if err != nil {
			r.log.Errorw("session_repo_decrypt_failed", "session_id", session.SessionID, "error", err)
			return fmt.Errorf("decrypt cookies of %s: %w", session.SessionID, err)
		}
		raw = plain
	}

	cookies := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &cookies); err != nil {
		r.log.Errorw("session_repo_decode_failed", "session_id", session.SessionID, "error", err)
		return fmt.Errorf("decode cookies of %s: %w", session.SessionID, err)
	}
	session.Cookies = cookies
	return nil
}
