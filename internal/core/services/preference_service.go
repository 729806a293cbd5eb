package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

// PreferenceService records travel preferences. The newest destinations of an
// owner become the default keywords of that owner's tasks.
type PreferenceService struct {
	repo   ports.PreferenceRepository
	logger *logger.Logger
}

func NewPreferenceService(repo ports.PreferenceRepository, log *logger.Logger) *PreferenceService {
	if log == nil {
		log = logger.NewNop()
	}
	return &PreferenceService{repo: repo, logger: log}
}

func (s *PreferenceService) SavePreference(ctx context.Context, ownerID, destination string, prefs map[string]interface{}) (*domain.Preference, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrPreferenceInvalidInput)
	}
	pref := &domain.Preference{
		OwnerID:     ownerID,
		Destination: strings.TrimSpace(destination),
		Preferences: domain.JSONB(prefs),
		CreatedAt:   now(),
	}
	if err := s.repo.Create(ctx, pref); err != nil {
		return nil, err
	}
	s.logger.Infow("preference_saved", "owner_id", ownerID, "destination", pref.Destination)
	return pref, nil
}

// RecentPreferences returns up to limit preferences, newest first.
func (s *PreferenceService) RecentPreferences(ctx context.Context, ownerID string, limit int) ([]domain.Preference, error) {
	if limit <= 0 {
		limit = preferenceKeywordCap
	}
	prefs, err := s.repo.GetRecentByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = []domain.Preference{}
	}
	return prefs, nil
}
