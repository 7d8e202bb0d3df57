package handlers

import (
	"errors"

	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/category"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	CategoryHandler interface {
		GetCategories(c *fiber.Ctx) error
		CreateCategory(c *fiber.Ctx) error
		UpdateCategory(c *fiber.Ctx) error
		DeleteCategory(c *fiber.Ctx) error
	}

	categoryHandler struct {
		categoryService category.CategoryService
		validator       *validator.Validate
	}
)

func NewCategoryHandler(categoryService category.CategoryService, validator *validator.Validate) CategoryHandler {
	return &categoryHandler{
		categoryService: categoryService,
		validator:       validator,
	}
}

func (h *categoryHandler) GetCategories(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.categoryService.GetCategories(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetCategories, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCategories)
}

func (h *categoryHandler) CreateCategory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CategoryRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveCategory, err)
	}

	res, err := h.categoryService.CreateCategory(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSaveCategory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddCategory)
}

func (h *categoryHandler) UpdateCategory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	categoryID := c.Params("id")
	req := new(domain.CategoryRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveCategory, err)
	}

	res, err := h.categoryService.UpdateCategory(c.Context(), userID, categoryID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSaveCategory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateCategory)
}

func (h *categoryHandler) DeleteCategory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	categoryID := c.Params("id")

	if err := h.categoryService.DeleteCategory(c.Context(), userID, categoryID); err != nil {
		var inUse *domain.CategoryInUseError
		if errors.As(err, &inUse) {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageCannotDeleteCategory, err)
		}
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteCategory, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteCategory)
}
