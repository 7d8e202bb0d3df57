package handlers

import (
	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/profile"
	"lifecycle/pkg/settings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ProfileHandler interface {
		GetProfile(c *fiber.Ctx) error
		UpdateProfile(c *fiber.Ctx) error
		GetSettings(c *fiber.Ctx) error
		UpdateSettings(c *fiber.Ctx) error
	}

	profileHandler struct {
		profileService  profile.ProfileService
		settingsService settings.SettingsService
		validator       *validator.Validate
	}
)

func NewProfileHandler(profileService profile.ProfileService, settingsService settings.SettingsService, validator *validator.Validate) ProfileHandler {
	return &profileHandler{
		profileService:  profileService,
		settingsService: settingsService,
		validator:       validator,
	}
}

func (h *profileHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetProfile, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *profileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateProfileRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateProfile, err)
	}

	res, err := h.profileService.UpdateProfile(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateProfile, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateProfile)
}

func (h *profileHandler) GetSettings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.settingsService.GetSettings(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetSettings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSettings)
}

func (h *profileHandler) UpdateSettings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateSettingsRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateSettings, err)
	}

	res, err := h.settingsService.UpdateSettings(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateSettings, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateSettings)
}
