package domain

import (
	"errors"
)

var (
	MessageSuccessGetPreference    = "preference retrieved successfully"
	MessageSuccessUpdatePreference = "preference saved"

	MessageFailedGetPreference    = "Failed to load"
	MessageFailedUpdatePreference = "Failed to save"

	ErrInvalidTheme = errors.New("theme must be one of light, dark, system")
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

type (
	ThemeRequest struct {
		Theme string `json:"theme" validate:"required,oneof=light dark system"`
	}

	ThemeResponse struct {
		Theme string `json:"theme"`
	}

	OnboardingRequest struct {
		Seen bool `json:"seen"`
	}

	OnboardingResponse struct {
		Seen bool `json:"seen"`
	}
)
