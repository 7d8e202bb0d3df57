package handlers

import (
	"errors"

	"lifecycle/domain"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP status codes. Anything not
// recognised is reported as an internal error.
func statusFor(err error) int {
	var inUse *domain.CategoryInUseError
	switch {
	case err == nil:
		return fiber.StatusOK
	case domain.IsValidationError(err),
		errors.As(err, &inUse),
		errors.Is(err, domain.ErrLastBatch),
		errors.Is(err, domain.ErrInvalidSort),
		errors.Is(err, domain.ErrCategoryNameRequired),
		errors.Is(err, domain.ErrInvalidTheme),
		errors.Is(err, domain.ErrResetTokenInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorizedProduct):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrBatchNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrFeedbackNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrAlreadyUpvoted):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
