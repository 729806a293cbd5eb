package db

import (
	"context"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type preferenceRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepository(db *gorm.DB, log *logger.Logger) ports.PreferenceRepository {
	return &preferenceRepository{db: db, log: log}
}

func (r *preferenceRepository) Create(ctx context.Context, pref *domain.Preference) error {
	if err := r.db.WithContext(ctx).Create(pref).Error; err != nil {
		r.log.Errorw("preference_repo_create_failed", "owner_id", pref.OwnerID, "error", err)
		return err
	}
	r.log.Infow("preference_repo_create_ok", "id", pref.ID, "owner_id", pref.OwnerID)
	return nil
}

func (r *preferenceRepository) GetRecentByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Preference, error) {
	var prefs []domain.Preference
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&prefs).Error
	if err != nil {
		r.log.Errorw("preference_repo_get_recent_failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	return prefs, nil
}
