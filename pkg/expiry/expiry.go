// Package expiry holds the derived values computed from product batches:
// day counts, status classification, labels and the product groupings used
// by the dashboard, alerts and notification summaries.
package expiry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lifecycle/entities"
)

const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "Jan 2, 2006"

	// WarningDays is the last day count still classified as warning.
	WarningDays = 7

	secondsPerDay = 24 * 60 * 60
)

type Status string

const (
	StatusExpired Status = "expired"
	StatusWarning Status = "warning"
	StatusGood    Status = "good"
)

var ErrInvalidDate = errors.New("invalid date, expected yyyy-mm-dd")

// ParseDate reads a calendar date and returns local midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Today truncates now to midnight in now's location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DateString formats the calendar date of t.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysUntil counts calendar days from today to date. Only the calendar
// dates take part, so the result does not depend on the time of day or on
// DST transitions between the two dates.
func DaysUntil(date string, today time.Time) (int, error) {
	target, err := ParseDate(date, today.Location())
	if err != nil {
		return 0, err
	}
	return calendarDiff(Today(today), target), nil
}

func calendarDiff(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	// Unix seconds rather than Sub: a Duration saturates after ~292 years.
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

func Classify(days int) Status {
	switch {
	case days < 0:
		return StatusExpired
	case days <= WarningDays:
		return StatusWarning
	default:
		return StatusGood
	}
}

// Label is the short badge wording used on product lists.
func Label(status Status, days int) string {
	if status == StatusExpired {
		return "Expired"
	}
	switch {
	case days == 0:
		return "Expires today"
	case days == 1:
		return "1 day left"
	case days <= WarningDays:
		return fmt.Sprintf("%dd left", days)
	}
	return "Good"
}

// LongLabel is the wording used on the alerts and dashboard lists.
func LongLabel(days int) string {
	switch {
	case days < 0:
		return "Expired"
	case days == 0:
		return "Today"
	case days == 1:
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", days)
}

// RelativeLabel describes date relative to today, falling back to the
// formatted calendar date beyond a month.
func RelativeLabel(date string, today time.Time) string {
	days, err := DaysUntil(date, today)
	if err != nil {
		return date
	}
	switch {
	case days < 0:
		return "Expired"
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days <= 30:
		return fmt.Sprintf("In %d days", days)
	}
	return FormatDate(date)
}

func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return t.Format(DisplayLayout)
}

// Earliest returns the smallest expiry date among batches. The comparison
// is on the yyyy-mm-dd strings, which orders them chronologically.
func Earliest(batches []*entities.ProductBatch) (string, bool) {
	b := EarliestBatch(batches)
	if b == nil {
		return "", false
	}
	return b.ExpiryDate, true
}

func EarliestBatch(batches []*entities.ProductBatch) *entities.ProductBatch {
	var min *entities.ProductBatch
	for _, b := range batches {
		if b == nil {
			continue
		}
		if min == nil || b.ExpiryDate < min.ExpiryDate {
			min = b
		}
	}
	return min
}

// TotalQuantity sums the batch quantities, counting unknown ones as zero.
func TotalQuantity(batches []*entities.ProductBatch) int {
	total := 0
	for _, b := range batches {
		if b != nil && b.Quantity != nil {
			total += *b.Quantity
		}
	}
	return total
}

type Evaluation struct {
	Earliest string
	Days     int
	Status   Status
	Label    string
	OK       bool
}

// Evaluate derives the display state of a product from its batches. OK is
// false when there is no batch or the earliest date cannot be read.
func Evaluate(batches []*entities.ProductBatch, today time.Time) Evaluation {
	earliest, ok := Earliest(batches)
	if !ok {
		return Evaluation{}
	}
	days, err := DaysUntil(earliest, today)
	if err != nil {
		return Evaluation{Earliest: earliest}
	}
	status := Classify(days)
	return Evaluation{
		Earliest: earliest,
		Days:     days,
		Status:   status,
		Label:    Label(status, days),
		OK:       true,
	}
}
