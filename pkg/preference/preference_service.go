// Package preference is a per-user key-value store for small client state:
// the onboarding flag, the theme and the notification handles.
package preference

import (
	"context"
	"errors"
	"strconv"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KeyOnboardingSeen = "onboarding_seen"
	KeyTheme          = "theme"
)

type (
	PreferenceService interface {
		Get(ctx context.Context, userID string, key string) (string, bool, error)
		Set(ctx context.Context, userID string, key string, value string) error
		Delete(ctx context.Context, userID string, key string) error
		MultiGet(ctx context.Context, userID string, keys []string) (map[string]string, error)
		MultiSet(ctx context.Context, userID string, values map[string]string) error
		MultiRemove(ctx context.Context, userID string, keys []string) error

		GetTheme(ctx context.Context, userID string) (domain.ThemeResponse, error)
		SetTheme(ctx context.Context, userID string, req domain.ThemeRequest) (domain.ThemeResponse, error)
		GetOnboarding(ctx context.Context, userID string) (domain.OnboardingResponse, error)
		SetOnboarding(ctx context.Context, userID string, req domain.OnboardingRequest) (domain.OnboardingResponse, error)
	}

	preferenceService struct {
		preferenceRepository PreferenceRepository
	}
)

func NewPreferenceService(preferenceRepository PreferenceRepository) PreferenceService {
	return &preferenceService{preferenceRepository: preferenceRepository}
}

func (s *preferenceService) Get(ctx context.Context, userID string, key string) (string, bool, error) {
	pref, err := s.preferenceRepository.Get(ctx, userID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return pref.Value, true, nil
}

func (s *preferenceService) Set(ctx context.Context, userID string, key string, value string) error {
	return s.MultiSet(ctx, userID, map[string]string{key: value})
}

func (s *preferenceService) Delete(ctx context.Context, userID string, key string) error {
	return s.MultiRemove(ctx, userID, []string{key})
}

func (s *preferenceService) MultiGet(ctx context.Context, userID string, keys []string) (map[string]string, error) {
	prefs, err := s.preferenceRepository.MultiGet(ctx, userID, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(prefs))
	for _, p := range prefs {
		out[p.Key] = p.Value
	}
	return out, nil
}

func (s *preferenceService) MultiSet(ctx context.Context, userID string, values map[string]string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	prefs := make([]*entities.Preference, 0, len(values))
	for k, v := range values {
		prefs = append(prefs, &entities.Preference{UserID: userUUID, Key: k, Value: v})
	}
	return s.preferenceRepository.MultiSet(ctx, prefs)
}

func (s *preferenceService) MultiRemove(ctx context.Context, userID string, keys []string) error {
	return s.preferenceRepository.MultiRemove(ctx, userID, keys)
}

func (s *preferenceService) GetTheme(ctx context.Context, userID string) (domain.ThemeResponse, error) {
	v, ok, err := s.Get(ctx, userID, KeyTheme)
	if err != nil {
		return domain.ThemeResponse{}, err
	}
	if !ok || !validTheme(v) {
		v = domain.ThemeSystem
	}
	return domain.ThemeResponse{Theme: v}, nil
}

func (s *preferenceService) SetTheme(ctx context.Context, userID string, req domain.ThemeRequest) (domain.ThemeResponse, error) {
	if !validTheme(req.Theme) {
		return domain.ThemeResponse{}, domain.ErrInvalidTheme
	}
	if err := s.Set(ctx, userID, KeyTheme, req.Theme); err != nil {
		return domain.ThemeResponse{}, err
	}
	return domain.ThemeResponse{Theme: req.Theme}, nil
}

func (s *preferenceService) GetOnboarding(ctx context.Context, userID string) (domain.OnboardingResponse, error) {
	v, ok, err := s.Get(ctx, userID, KeyOnboardingSeen)
	if err != nil {
		return domain.OnboardingResponse{}, err
	}
	seen, _ := strconv.ParseBool(v)
	return domain.OnboardingResponse{Seen: ok && seen}, nil
}

func (s *preferenceService) SetOnboarding(ctx context.Context, userID string, req domain.OnboardingRequest) (domain.OnboardingResponse, error) {
	if err := s.Set(ctx, userID, KeyOnboardingSeen, strconv.FormatBool(req.Seen)); err != nil {
		return domain.OnboardingResponse{}, err
	}
	return domain.OnboardingResponse{Seen: req.Seen}, nil
}

func validTheme(v string) bool {
	switch v {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
		return true
	}
	return false
}
