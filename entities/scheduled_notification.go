package entities

import (
	"time"

	"github.com/google/uuid"
)

type ScheduledNotification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Kind          string     `gorm:"not null" json:"kind"` // "daily-expiry", "weekly-expiry", "expiry-alert", "test"
	Channel       string     `gorm:"not null" json:"channel"`
	Title         string     `json:"title"`
	Body          string     `gorm:"type:text" json:"body"`
	Sound         string     `json:"sound"`
	FireAt        time.Time  `gorm:"type:timestamp with time zone;index;not null" json:"fire_at"`
	Status        string     `gorm:"index;not null" json:"status"` // "scheduled", "sending", "sent", "failed", "cancelled"
	FailureReason *string    `json:"failure_reason,omitempty"`
	SentAt        *time.Time `gorm:"type:timestamp with time zone" json:"sent_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}
