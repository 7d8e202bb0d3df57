package notification

import (
	"fmt"
	"time"
)

const (
	Title   = "LifeCycle"
	Channel = "lifecycle-alerts"
	Sound   = "notification.wav"

	KindDaily       = "daily-expiry"
	KindWeekly      = "weekly-expiry"
	KindExpiryAlert = "expiry-alert"
	KindTest        = "test"

	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"

	HandleKeyDaily  = "lifecycle_daily_notification_id"
	HandleKeyWeekly = "lifecycle_weekly_notification_id"

	alertHour   = 9
	alertMinute = 0

	// WeekWindow is the inclusive day range counted as "this week".
	WeekWindow = 7

	TestDelay         = 3 * time.Second
	DefaultAlertDelay = 1 * time.Second
)

// NextDailyAt returns the next 09:00 strictly after now, in now's location.
func NextDailyAt(now time.Time) time.Time {
	y, m, d := now.Date()
	at := time.Date(y, m, d, alertHour, alertMinute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, m, d+1, alertHour, alertMinute, 0, 0, now.Location())
	}
	return at
}

// NextWeeklyAt returns the next Monday 09:00 strictly after now. On a
// Monday before 09:00 that is the same day.
func NextWeeklyAt(now time.Time) time.Time {
	y, m, d := now.Date()
	offset := (8 - int(now.Weekday())) % 7
	at := time.Date(y, m, d+offset, alertHour, alertMinute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, m, d+offset+7, alertHour, alertMinute, 0, 0, now.Location())
	}
	return at
}

func DailyBody(count int) string {
	return countBody(count, "today")
}

func WeeklyBody(count int) string {
	return countBody(count, "this week")
}

func countBody(count int, when string) string {
	switch count {
	case 0:
		return fmt.Sprintf("No products expiring %s.", when)
	case 1:
		return fmt.Sprintf("1 product expiring %s.", when)
	}
	return fmt.Sprintf("%d products expiring %s.", count, when)
}
