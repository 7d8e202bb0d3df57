package settings

import (
	"context"
	"errors"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	// Rescheduler refreshes a user's pending expiry notifications.
	Rescheduler interface {
		RescheduleForUser(ctx context.Context, userID string) (domain.RescheduleResponse, error)
	}

	SettingsService interface {
		GetSettings(ctx context.Context, userID string) (domain.SettingsResponse, error)
		UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (domain.SettingsResponse, error)
	}

	settingsService struct {
		settingsRepository SettingsRepository
		rescheduler        Rescheduler
	}
)

func NewSettingsService(settingsRepository SettingsRepository, rescheduler Rescheduler) SettingsService {
	return &settingsService{
		settingsRepository: settingsRepository,
		rescheduler:        rescheduler,
	}
}

// GetSettings falls back to the defaults when the user has no row yet.
func (s *settingsService) GetSettings(ctx context.Context, userID string) (domain.SettingsResponse, error) {
	settings, err := s.settingsRepository.GetSettingsByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SettingsResponse{
				UserID:         userID,
				AlertThreshold: domain.DefaultAlertThreshold,
			}, nil
		}
		return domain.SettingsResponse{}, err
	}
	return toResponse(settings), nil
}

// UpdateSettings updates the stored row when there is one and inserts it
// otherwise, then reschedules the user's notifications.
func (s *settingsService) UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (domain.SettingsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SettingsResponse{}, domain.ErrParseUUID
	}

	existing, err := s.settingsRepository.GetSettingsByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.SettingsResponse{}, err
	}

	settings := existing
	if settings == nil {
		settings = &entities.Settings{
			ID:             uuid.New(),
			UserID:         userUUID,
			AlertThreshold: domain.DefaultAlertThreshold,
		}
	}
	apply(settings, req)

	if existing != nil {
		err = s.settingsRepository.UpdateSettings(ctx, settings)
	} else {
		err = s.settingsRepository.CreateSettings(ctx, settings)
	}
	if err != nil {
		return domain.SettingsResponse{}, err
	}

	if s.rescheduler != nil {
		if _, err := s.rescheduler.RescheduleForUser(ctx, userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to reschedule notifications after settings change")
		}
	}

	return toResponse(settings), nil
}

func apply(settings *entities.Settings, req domain.UpdateSettingsRequest) {
	if req.DailyExpiryAlertsEnabled != nil {
		settings.DailyExpiryAlertsEnabled = *req.DailyExpiryAlertsEnabled
	}
	if req.AlertThreshold != nil {
		settings.AlertThreshold = *req.AlertThreshold
	}
	if req.WeeklyReport != nil {
		settings.WeeklyReport = *req.WeeklyReport
	}
}

func toResponse(s *entities.Settings) domain.SettingsResponse {
	return domain.SettingsResponse{
		ID:                       s.ID.String(),
		UserID:                   s.UserID.String(),
		DailyExpiryAlertsEnabled: s.DailyExpiryAlertsEnabled,
		AlertThreshold:           s.AlertThreshold,
		WeeklyReport:             s.WeeklyReport,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}
