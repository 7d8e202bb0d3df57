package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/internal/utils/mailing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	SenderMail = "mail"
	SenderLog  = "log"

	dispatchBatchSize = 100

	// A claimed row older than this is assumed to belong to a dispatcher
	// that died mid-batch.
	minClaimTimeout = 5 * time.Minute
)

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n *entities.ScheduledNotification) error
}

// Dispatcher polls for due notifications and hands them to a Sender.
type Dispatcher struct {
	notificationRepository NotificationRepository
	sender                 Sender
	interval               time.Duration
	now                    func() time.Time
}

func NewDispatcher(notificationRepository NotificationRepository, sender Sender, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Dispatcher{
		notificationRepository: notificationRepository,
		sender:                 sender,
		interval:               interval,
		now:                    time.Now,
	}
}

// Run dispatches until ctx is cancelled. A failed poll is logged and the
// next tick tries again.
func (d *Dispatcher) Run(ctx context.Context) error {
	logrus.WithField("interval", d.interval.String()).Info("notification dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.ReleaseStale(ctx); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Error("failed to release stale notifications")
		}
		if _, err := d.DispatchDue(ctx); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Error("notification dispatch failed")
		}
		select {
		case <-ctx.Done():
			logrus.Info("notification dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// ReleaseStale puts notifications left in sending by a stopped dispatcher
// back in the queue.
func (d *Dispatcher) ReleaseStale(ctx context.Context) (int64, error) {
	timeout := 2 * d.interval
	if timeout < minClaimTimeout {
		timeout = minClaimTimeout
	}
	n, err := d.notificationRepository.ReleaseStale(ctx, d.now().Add(-timeout))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logrus.WithField("count", n).Warn("released stale notifications")
	}
	return n, nil
}

// DispatchDue sends every notification whose fire time has passed and
// returns how many were delivered.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	due, err := d.notificationRepository.ClaimDue(ctx, d.now(), dispatchBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range due {
		log := logrus.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"kind":            n.Kind,
		})
		if err := d.sender.Send(ctx, n); err != nil {
			log.WithError(err).Warn("notification delivery failed")
			if err := d.notificationRepository.MarkFailed(ctx, n.ID.String(), err.Error()); err != nil {
				log.WithError(err).Error("failed to mark notification failed")
			}
			continue
		}
		if err := d.notificationRepository.MarkSent(ctx, n.ID.String(), d.now()); err != nil {
			log.WithError(err).Error("failed to mark notification sent")
			continue
		}
		sent++
	}
	return sent, nil
}

type logSender struct{}

// NewLogSender writes notifications to the application log instead of
// delivering them.
func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(_ context.Context, n *entities.ScheduledNotification) error {
	logrus.WithFields(logrus.Fields{
		"user_id": n.UserID,
		"kind":    n.Kind,
		"channel": n.Channel,
		"title":   n.Title,
		"body":    n.Body,
	}).Info("notification")
	return nil
}

type (
	RecipientSource interface {
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
	}

	ReportSource interface {
		ExportInventory(ctx context.Context, userID string) (domain.ExportResponse, error)
	}

	mailSender struct {
		recipients RecipientSource
		settings   SettingsSource
		reports    ReportSource
		mailer     mailing.Mailer
	}
)

// NewMailSender mails notifications to the account address. Weekly
// summaries of users with the weekly report enabled carry an inventory
// export link; reports may be nil to disable that.
func NewMailSender(recipients RecipientSource, settings SettingsSource, reports ReportSource, mailer mailing.Mailer) Sender {
	return &mailSender{
		recipients: recipients,
		settings:   settings,
		reports:    reports,
		mailer:     mailer,
	}
}

func (m *mailSender) Send(ctx context.Context, n *entities.ScheduledNotification) error {
	user, err := m.recipients.GetUserByID(ctx, n.UserID.String())
	if err != nil {
		return err
	}

	body := fmt.Sprintf("<p>%s</p>", html.EscapeString(n.Body))
	if link := m.reportLink(ctx, n); link != "" {
		body += fmt.Sprintf("<p><a href=\"%s\">Download your inventory report</a></p>", html.EscapeString(link))
	}
	return m.mailer.SendMail(user.Email, n.Title, body)
}

func (m *mailSender) reportLink(ctx context.Context, n *entities.ScheduledNotification) string {
	if n.Kind != KindWeekly || m.reports == nil {
		return ""
	}
	userID := n.UserID.String()
	settings, err := m.settings.GetSettingsByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to load settings for weekly report")
		}
		return ""
	}
	if !settings.WeeklyReport {
		return ""
	}
	res, err := m.reports.ExportInventory(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to export weekly report")
		return ""
	}
	return res.URL
}
