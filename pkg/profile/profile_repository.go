package profile

import (
	"context"

	"lifecycle/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ProfileRepository interface {
		GetProfileByID(ctx context.Context, id string) (*entities.Profile, error)
		UpsertProfile(ctx context.Context, profile *entities.Profile) error
	}

	profileRepository struct {
		db *gorm.DB
	}
)

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetProfileByID(ctx context.Context, id string) (*entities.Profile, error) {
	var profile entities.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpsertProfile(ctx context.Context, profile *entities.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"business_name", "phone", "address", "updated_at"}),
	}).Create(profile).Error
}
