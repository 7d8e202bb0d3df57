package entities

import (
	"github.com/google/uuid"
)

// Profile shares its primary key with the owning User.
type Profile struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`

	Timestamp
}

type Settings struct {
	ID                       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID                   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	DailyExpiryAlertsEnabled bool      `gorm:"not null;default:false" json:"daily_expiry_alerts_enabled"`
	AlertThreshold           int       `gorm:"not null;default:7" json:"alert_threshold"`
	WeeklyReport             bool      `gorm:"not null;default:false" json:"weekly_report"`

	Timestamp
}
