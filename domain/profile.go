package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetProfile     = "profile retrieved successfully"
	MessageSuccessUpdateProfile  = "Profile updated"
	MessageSuccessGetSettings    = "settings retrieved successfully"
	MessageSuccessUpdateSettings = "Settings saved"

	MessageFailedGetProfile     = "Failed to load"
	MessageFailedUpdateProfile  = "Failed to save"
	MessageFailedGetSettings    = "Failed to load"
	MessageFailedUpdateSettings = "Failed to save"

	ErrProfileNotFound = errors.New("profile not found")
)

const DefaultAlertThreshold = 7

type (
	UpdateProfileRequest struct {
		BusinessName *string `json:"business_name" validate:"omitempty,max=200"`
		Phone        *string `json:"phone" validate:"omitempty,max=50"`
		Address      *string `json:"address" validate:"omitempty,max=500"`
	}

	ProfileResponse struct {
		ID           string    `json:"id"`
		BusinessName string    `json:"business_name"`
		Email        string    `json:"email"`
		Phone        *string   `json:"phone"`
		Address      *string   `json:"address"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// UpdateSettingsRequest is a partial update; absent fields keep their
	// stored value.
	UpdateSettingsRequest struct {
		DailyExpiryAlertsEnabled *bool `json:"daily_expiry_alerts_enabled"`
		AlertThreshold           *int  `json:"alert_threshold" validate:"omitempty,min=0,max=365"`
		WeeklyReport             *bool `json:"weekly_report"`
	}

	SettingsResponse struct {
		ID                       string    `json:"id,omitempty"`
		UserID                   string    `json:"user_id"`
		DailyExpiryAlertsEnabled bool      `json:"daily_expiry_alerts_enabled"`
		AlertThreshold           int       `json:"alert_threshold"`
		WeeklyReport             bool      `json:"weekly_report"`
		CreatedAt                time.Time `json:"created_at,omitempty"`
		UpdatedAt                time.Time `json:"updated_at,omitempty"`
	}
)
