package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/pkg/utils/keygen"
)

type SessionService struct {
	repo   ports.SessionRepository
	logger *logger.Logger
}

func NewSessionService(repo ports.SessionRepository, log *logger.Logger) *SessionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionService{repo: repo, logger: log}
}

// SaveSession stores cookies for subject. An empty sessionID gets a fresh one,
// which is returned.
func (s *SessionService) SaveSession(ctx context.Context, subject, sessionID string, cookies map[string]string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", ErrSessionInvalidInput)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = keygen.NewSessionID()
	}
	if err := s.repo.Save(ctx, subject, sessionID, cookies); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *SessionService) LinkOwner(ctx context.Context, ownerID, sessionID, subject string) error {
	ownerID = strings.TrimSpace(ownerID)
	sessionID = strings.TrimSpace(sessionID)
	if ownerID == "" || sessionID == "" {
		return fmt.Errorf("%w: owner_id and session_id are required", ErrSessionInvalidInput)
	}
	return s.repo.LinkOwner(ctx, ownerID, sessionID, strings.TrimSpace(subject))
}

func (s *SessionService) OwnerSession(ctx context.Context, ownerID string) (*domain.LoginSession, error) {
	session, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) SubjectSession(ctx context.Context, subject string) (*domain.LoginSession, error) {
	session, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
