// Package notification keeps each user's daily and weekly expiry summaries
// booked against their current inventory and delivers due notifications.
package notification

import (
	"context"
	"errors"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/internal/utils"
	"lifecycle/pkg/expiry"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const listLimit = 50

type (
	ProductSource interface {
		GetProductsByUserID(ctx context.Context, userID string) ([]*entities.Product, error)
	}

	SettingsSource interface {
		GetSettingsByUserID(ctx context.Context, userID string) (*entities.Settings, error)
	}

	NotificationService interface {
		Reschedule(ctx context.Context, userID string, products []*entities.Product, settings *entities.Settings) (domain.RescheduleResponse, error)
		RescheduleForUser(ctx context.Context, userID string) (domain.RescheduleResponse, error)
		SendTest(ctx context.Context, userID string) (domain.NotificationResponse, error)
		ScheduleExpiryAlert(ctx context.Context, userID string, req domain.ExpiryAlertRequest) (domain.NotificationResponse, error)
		ListNotifications(ctx context.Context, userID string) ([]domain.NotificationResponse, error)
	}

	notificationService struct {
		notificationRepository NotificationRepository
		scheduler              Scheduler
		handles                HandleStore
		locker                 UserLocker
		products               ProductSource
		settings               SettingsSource
		now                    func() time.Time
	}
)

func NewNotificationService(
	notificationRepository NotificationRepository,
	scheduler Scheduler,
	handles HandleStore,
	locker UserLocker,
	products ProductSource,
	settings SettingsSource,
) NotificationService {
	return &notificationService{
		notificationRepository: notificationRepository,
		scheduler:              scheduler,
		handles:                handles,
		locker:                 locker,
		products:               products,
		settings:               settings,
		now:                    utils.Now,
	}
}

// Reschedule replaces the pending summaries with fresh ones computed from
// products. With alerts disabled everything pending is cancelled. Calls for
// the same user run one at a time.
func (s *notificationService) Reschedule(ctx context.Context, userID string, products []*entities.Product, settings *entities.Settings) (domain.RescheduleResponse, error) {
	var res domain.RescheduleResponse
	err := s.locker.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		res, err = s.reschedule(ctx, userID, products, settings)
		return err
	})
	return res, err
}

// RescheduleForUser loads settings and products under the user's lock so the
// last caller always schedules from the newest data.
func (s *notificationService) RescheduleForUser(ctx context.Context, userID string) (domain.RescheduleResponse, error) {
	var res domain.RescheduleResponse
	err := s.locker.WithUserLock(ctx, userID, func(ctx context.Context) error {
		settings, err := s.settings.GetSettingsByUserID(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			settings = nil
		}

		var products []*entities.Product
		if settings != nil && settings.DailyExpiryAlertsEnabled {
			products, err = s.products.GetProductsByUserID(ctx, userID)
			if err != nil {
				return err
			}
		}

		res, err = s.reschedule(ctx, userID, products, settings)
		return err
	})
	return res, err
}

func (s *notificationService) reschedule(ctx context.Context, userID string, products []*entities.Product, settings *entities.Settings) (domain.RescheduleResponse, error) {
	enabled := settings != nil && settings.DailyExpiryAlertsEnabled
	s.cancelSummaries(ctx, userID, enabled)

	if !enabled {
		return domain.RescheduleResponse{Enabled: false, Scheduled: []domain.NotificationResponse{}}, nil
	}

	now := s.now()
	today := expiry.Today(now)
	todayCount := expiry.CountExpiringToday(products, today)
	weekCount := expiry.CountExpiringWithin(products, today, WeekWindow)

	daily, err := s.scheduler.Schedule(ctx, Request{
		UserID: userID,
		Kind:   KindDaily,
		Title:  Title,
		Body:   DailyBody(todayCount),
		FireAt: NextDailyAt(now),
	})
	if err != nil {
		return domain.RescheduleResponse{}, err
	}

	weekly, err := s.scheduler.Schedule(ctx, Request{
		UserID: userID,
		Kind:   KindWeekly,
		Title:  Title,
		Body:   WeeklyBody(weekCount),
		FireAt: NextWeeklyAt(now),
	})
	if err != nil {
		return domain.RescheduleResponse{}, err
	}

	if err := s.handles.Save(ctx, userID, Handles{Daily: daily.ID.String(), Weekly: weekly.ID.String()}); err != nil {
		return domain.RescheduleResponse{}, err
	}

	return domain.RescheduleResponse{
		Enabled:       true,
		ExpiringToday: todayCount,
		ExpiringWeek:  weekCount,
		Scheduled:     []domain.NotificationResponse{toResponse(daily), toResponse(weekly)},
	}, nil
}

// cancelSummaries drops the stored daily and weekly notifications, then
// sweeps any summary rows whose handles were lost. With alerts disabled every
// pending notification goes. Failures are logged and otherwise ignored so
// that rescheduling can go ahead.
func (s *notificationService) cancelSummaries(ctx context.Context, userID string, enabled bool) {
	log := logrus.WithField("user_id", userID)

	h, err := s.handles.Load(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("failed to load notification handles")
	}
	for _, handle := range []string{h.Daily, h.Weekly} {
		if handle == "" {
			continue
		}
		if err := s.scheduler.Cancel(ctx, userID, handle); err != nil {
			log.WithError(err).WithField("handle", handle).Warn("failed to cancel notification")
		}
	}

	kinds := []string{KindDaily, KindWeekly}
	if !enabled {
		kinds = nil
	}
	if err := s.scheduler.CancelAll(ctx, userID, kinds...); err != nil {
		log.WithError(err).Warn("failed to cancel pending notifications")
	}

	if err := s.handles.Clear(ctx, userID); err != nil {
		log.WithError(err).Warn("failed to clear notification handles")
	}
}

func (s *notificationService) SendTest(ctx context.Context, userID string) (domain.NotificationResponse, error) {
	n, err := s.scheduler.Schedule(ctx, Request{
		UserID: userID,
		Kind:   KindTest,
		Title:  Title + " test",
		Body:   "This is a test notification.",
		FireAt: s.now().Add(TestDelay),
	})
	if err != nil {
		return domain.NotificationResponse{}, err
	}
	return toResponse(n), nil
}

func (s *notificationService) ScheduleExpiryAlert(ctx context.Context, userID string, req domain.ExpiryAlertRequest) (domain.NotificationResponse, error) {
	delay := DefaultAlertDelay
	if req.InSeconds != nil {
		delay = time.Duration(*req.InSeconds) * time.Second
	}
	n, err := s.scheduler.Schedule(ctx, Request{
		UserID: userID,
		Kind:   KindExpiryAlert,
		Title:  req.Title,
		Body:   req.Body,
		FireAt: s.now().Add(delay),
	})
	if err != nil {
		return domain.NotificationResponse{}, err
	}
	return toResponse(n), nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string) ([]domain.NotificationResponse, error) {
	list, err := s.notificationRepository.ListByUser(ctx, userID, listLimit)
	if err != nil {
		return nil, err
	}
	res := make([]domain.NotificationResponse, 0, len(list))
	for _, n := range list {
		res = append(res, toResponse(n))
	}
	return res, nil
}

func toResponse(n *entities.ScheduledNotification) domain.NotificationResponse {
	return domain.NotificationResponse{
		ID:            n.ID.String(),
		Kind:          n.Kind,
		Channel:       n.Channel,
		Title:         n.Title,
		Body:          n.Body,
		FireAt:        n.FireAt,
		Status:        n.Status,
		FailureReason: n.FailureReason,
		SentAt:        n.SentAt,
	}
}
