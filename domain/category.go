package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	MessageSuccessGetCategories  = "categories retrieved successfully"
	MessageSuccessAddCategory    = "Category added"
	MessageSuccessUpdateCategory = "Category updated"
	MessageSuccessDeleteCategory = "Category deleted"

	MessageFailedGetCategories  = "Failed to load"
	MessageFailedSaveCategory   = "Failed to save"
	MessageFailedDeleteCategory = "Failed to delete"
	MessageCannotDeleteCategory = "Cannot delete"

	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("Name is required")
)

// CategoryInUseError reports how many products still carry the category's
// name; deletion is refused while it is above zero.
type CategoryInUseError struct {
	Name  string
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("%d product(s) use this category. Change their category first.", e.Count)
}

type (
	CategoryRequest struct {
		Name        string `json:"name" validate:"max=100"`
		Description string `json:"description" validate:"max=500"`
	}

	CategoryResponse struct {
		ID           string    `json:"id"`
		UserID       string    `json:"user_id"`
		Name         string    `json:"name"`
		Description  *string   `json:"description"`
		ProductCount int       `json:"product_count"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)
