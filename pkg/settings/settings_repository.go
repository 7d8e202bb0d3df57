package settings

import (
	"context"

	"lifecycle/entities"

	"gorm.io/gorm"
)

type (
	SettingsRepository interface {
		GetSettingsByUserID(ctx context.Context, userID string) (*entities.Settings, error)
		CreateSettings(ctx context.Context, settings *entities.Settings) error
		UpdateSettings(ctx context.Context, settings *entities.Settings) error
	}

	settingsRepository struct {
		db *gorm.DB
	}
)

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSettingsByUserID(ctx context.Context, userID string) (*entities.Settings, error) {
	var settings entities.Settings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) CreateSettings(ctx context.Context, settings *entities.Settings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *settingsRepository) UpdateSettings(ctx context.Context, settings *entities.Settings) error {
	return r.db.WithContext(ctx).Model(&entities.Settings{}).
		Where("user_id = ?", settings.UserID).
		Updates(map[string]any{
			"daily_expiry_alerts_enabled": settings.DailyExpiryAlertsEnabled,
			"alert_threshold":             settings.AlertThreshold,
			"weekly_report":               settings.WeeklyReport,
		}).Error
}
