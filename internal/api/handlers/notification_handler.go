package handlers

import (
	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/notification"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	NotificationHandler interface {
		Reschedule(c *fiber.Ctx) error
		SendTest(c *fiber.Ctx) error
		ScheduleExpiryAlert(c *fiber.Ctx) error
		ListNotifications(c *fiber.Ctx) error
	}

	notificationHandler struct {
		notificationService notification.NotificationService
		validator           *validator.Validate
	}
)

func NewNotificationHandler(notificationService notification.NotificationService, validator *validator.Validate) NotificationHandler {
	return &notificationHandler{
		notificationService: notificationService,
		validator:           validator,
	}
}

func (h *notificationHandler) Reschedule(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.notificationService.RescheduleForUser(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedReschedule, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessReschedule)
}

func (h *notificationHandler) SendTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.notificationService.SendTest(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedTestNotification, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessTestNotification)
}

func (h *notificationHandler) ScheduleExpiryAlert(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ExpiryAlertRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedExpiryAlert, err)
	}

	res, err := h.notificationService.ScheduleExpiryAlert(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedExpiryAlert, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessExpiryAlert)
}

func (h *notificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.notificationService.ListNotifications(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetNotifications, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetNotifications)
}
