package profile

import (
	"context"
	"errors"
	"strings"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ProfileService interface {
		GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error)
		UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.ProfileResponse, error)
	}

	profileService struct {
		profileRepository ProfileRepository
	}
)

func NewProfileService(profileRepository ProfileRepository) ProfileService {
	return &profileService{profileRepository: profileRepository}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error) {
	profile, err := s.profileRepository.GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProfileResponse{}, domain.ErrProfileNotFound
		}
		return domain.ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

// UpdateProfile writes the supplied fields over the stored profile,
// creating it when the user has none yet.
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.ProfileResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProfileResponse{}, domain.ErrParseUUID
	}

	profile, err := s.profileRepository.GetProfileByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProfileResponse{}, err
		}
		profile = &entities.Profile{ID: userUUID}
	}

	if req.BusinessName != nil {
		profile.BusinessName = strings.TrimSpace(*req.BusinessName)
	}
	if req.Phone != nil {
		profile.Phone = optional(*req.Phone)
	}
	if req.Address != nil {
		profile.Address = optional(*req.Address)
	}

	if err := s.profileRepository.UpsertProfile(ctx, profile); err != nil {
		return domain.ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toResponse(p *entities.Profile) domain.ProfileResponse {
	return domain.ProfileResponse{
		ID:           p.ID.String(),
		BusinessName: p.BusinessName,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		CreatedAt:    p.CreatedAt,
	}
}
