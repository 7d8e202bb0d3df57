package handlers

import (
	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/feedback"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	FeedbackHandler interface {
		SubmitFeedback(c *fiber.Ctx) error
		GetFeedbackList(c *fiber.Ctx) error
		GetMyUpvotes(c *fiber.Ctx) error
		AddUpvote(c *fiber.Ctx) error
		RemoveUpvote(c *fiber.Ctx) error
	}

	feedbackHandler struct {
		feedbackService feedback.FeedbackService
		validator       *validator.Validate
	}
)

func NewFeedbackHandler(feedbackService feedback.FeedbackService, validator *validator.Validate) FeedbackHandler {
	return &feedbackHandler{
		feedbackService: feedbackService,
		validator:       validator,
	}
}

func (h *feedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SubmitFeedbackRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSubmitFeedback, err)
	}

	res, err := h.feedbackService.SubmitFeedback(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSubmitFeedback, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubmitFeedback)
}

func (h *feedbackHandler) GetFeedbackList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.feedbackService.GetFeedbackList(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFeedback, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetFeedback)
}

func (h *feedbackHandler) GetMyUpvotes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.feedbackService.GetMyUpvotes(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFeedback, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetFeedback)
}

func (h *feedbackHandler) AddUpvote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	feedbackID := c.Params("id")

	if err := h.feedbackService.AddUpvote(c.Context(), userID, feedbackID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpvote, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessAddUpvote)
}

func (h *feedbackHandler) RemoveUpvote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	feedbackID := c.Params("id")

	if err := h.feedbackService.RemoveUpvote(c.Context(), userID, feedbackID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpvote, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemoveUpvote)
}
