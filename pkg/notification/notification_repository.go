package notification

import (
	"context"
	"time"

	"lifecycle/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	NotificationRepository interface {
		Create(ctx context.Context, n *entities.ScheduledNotification) error
		Cancel(ctx context.Context, userID string, id string) error
		// CancelAllForUser cancels the user's scheduled rows of the given
		// kinds, or of every kind when none are given.
		CancelAllForUser(ctx context.Context, userID string, kinds []string) error
		ListByUser(ctx context.Context, userID string, limit int) ([]*entities.ScheduledNotification, error)
		// ClaimDue moves up to limit due rows from scheduled to sending and
		// returns them. Rows locked by another dispatcher are skipped.
		ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entities.ScheduledNotification, error)
		// ReleaseStale returns rows claimed before the given time and never
		// marked to scheduled, and reports how many there were.
		ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error)
		MarkSent(ctx context.Context, id string, sentAt time.Time) error
		MarkFailed(ctx context.Context, id string, reason string) error
	}

	notificationRepository struct {
		db *gorm.DB
	}
)

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *entities.ScheduledNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) Cancel(ctx context.Context, userID string, id string) error {
	return r.db.WithContext(ctx).Model(&entities.ScheduledNotification{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, StatusScheduled).
		Update("status", StatusCancelled).Error
}

func (r *notificationRepository) CancelAllForUser(ctx context.Context, userID string, kinds []string) error {
	query := r.db.WithContext(ctx).Model(&entities.ScheduledNotification{}).
		Where("user_id = ? AND status = ?", userID, StatusScheduled)
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}
	return query.Update("status", StatusCancelled).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.ScheduledNotification, error) {
	var list []*entities.ScheduledNotification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("fire_at desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entities.ScheduledNotification, error) {
	var due []*entities.ScheduledNotification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND fire_at <= ?", StatusScheduled, now).
			Order("fire_at asc").
			Limit(limit).
			Find(&due).Error; err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}
		ids := make([]string, 0, len(due))
		for _, n := range due {
			ids = append(ids, n.ID.String())
			n.Status = StatusSending
			n.UpdatedAt = now
		}
		return tx.Model(&entities.ScheduledNotification{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"status": StatusSending, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return due, nil
}

func (r *notificationRepository) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entities.ScheduledNotification{}).
		Where("status = ? AND updated_at < ?", StatusSending, claimedBefore).
		Updates(map[string]any{"status": StatusScheduled, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.ScheduledNotification{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": StatusSent, "sent_at": sentAt}).Error
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.db.WithContext(ctx).Model(&entities.ScheduledNotification{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": StatusFailed, "failure_reason": reason}).Error
}
