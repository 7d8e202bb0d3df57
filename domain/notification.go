package domain

import "time"

var (
	MessageSuccessReschedule       = "notifications rescheduled"
	MessageSuccessTestNotification = "test notification scheduled"
	MessageSuccessGetNotifications = "notifications retrieved successfully"
	MessageSuccessExpiryAlert      = "expiry alert scheduled"

	MessageFailedReschedule       = "failed to reschedule notifications"
	MessageFailedTestNotification = "failed to schedule test notification"
	MessageFailedGetNotifications = "Failed to load"
	MessageFailedExpiryAlert      = "failed to schedule expiry alert"
)

type (
	// ExpiryAlertRequest schedules a one-off alert InSeconds from now,
	// defaulting to one second.
	ExpiryAlertRequest struct {
		Title     string `json:"title" validate:"required,max=200"`
		Body      string `json:"body" validate:"required,max=1000"`
		InSeconds *int   `json:"in_seconds" validate:"omitempty,min=0,max=86400"`
	}

	NotificationResponse struct {
		ID            string     `json:"id"`
		Kind          string     `json:"kind"`
		Channel       string     `json:"channel"`
		Title         string     `json:"title"`
		Body          string     `json:"body"`
		FireAt        time.Time  `json:"fire_at"`
		Status        string     `json:"status"`
		FailureReason *string    `json:"failure_reason,omitempty"`
		SentAt        *time.Time `json:"sent_at,omitempty"`
	}

	RescheduleResponse struct {
		Enabled       bool                   `json:"enabled"`
		ExpiringToday int                    `json:"expiring_today"`
		ExpiringWeek  int                    `json:"expiring_week"`
		Scheduled     []NotificationResponse `json:"scheduled"`
	}
)
