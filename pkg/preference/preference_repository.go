package preference

import (
	"context"

	"lifecycle/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	PreferenceRepository interface {
		Get(ctx context.Context, userID string, key string) (*entities.Preference, error)
		MultiGet(ctx context.Context, userID string, keys []string) ([]*entities.Preference, error)
		MultiSet(ctx context.Context, prefs []*entities.Preference) error
		MultiRemove(ctx context.Context, userID string, keys []string) error
	}

	preferenceRepository struct {
		db *gorm.DB
	}
)

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, userID string, key string) (*entities.Preference, error) {
	var pref entities.Preference
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepository) MultiGet(ctx context.Context, userID string, keys []string) ([]*entities.Preference, error) {
	var prefs []*entities.Preference
	if len(keys) == 0 {
		return prefs, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND key IN ?", userID, keys).
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *preferenceRepository) MultiSet(ctx context.Context, prefs []*entities.Preference) error {
	if len(prefs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&prefs).Error
}

func (r *preferenceRepository) MultiRemove(ctx context.Context, userID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND key IN ?", userID, keys).
		Delete(&entities.Preference{}).Error
}
