package handlers

import (
	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/preference"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PreferenceHandler interface {
		GetTheme(c *fiber.Ctx) error
		SetTheme(c *fiber.Ctx) error
		GetOnboarding(c *fiber.Ctx) error
		SetOnboarding(c *fiber.Ctx) error
	}

	preferenceHandler struct {
		preferenceService preference.PreferenceService
		validator         *validator.Validate
	}
)

func NewPreferenceHandler(preferenceService preference.PreferenceService, validator *validator.Validate) PreferenceHandler {
	return &preferenceHandler{
		preferenceService: preferenceService,
		validator:         validator,
	}
}

func (h *preferenceHandler) GetTheme(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.preferenceService.GetTheme(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetPreference, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPreference)
}

func (h *preferenceHandler) SetTheme(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ThemeRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdatePreference, domain.ErrInvalidTheme)
	}

	res, err := h.preferenceService.SetTheme(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdatePreference, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdatePreference)
}

func (h *preferenceHandler) GetOnboarding(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.preferenceService.GetOnboarding(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetPreference, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPreference)
}

func (h *preferenceHandler) SetOnboarding(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.OnboardingRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.preferenceService.SetOnboarding(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdatePreference, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdatePreference)
}
