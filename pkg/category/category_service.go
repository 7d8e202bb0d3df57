package category

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
	// ProductCounter reports how many of a user's products carry each
	// category name, keyed by the trimmed name.
	ProductCounter interface {
		CountProductsByCategory(ctx context.Context, userID string) (map[string]int, error)
	}

	CategoryService interface {
		GetCategories(ctx context.Context, userID string) ([]domain.CategoryResponse, error)
		CreateCategory(ctx context.Context, userID string, req domain.CategoryRequest) (domain.CategoryResponse, error)
		UpdateCategory(ctx context.Context, userID string, id string, req domain.CategoryRequest) (domain.CategoryResponse, error)
		DeleteCategory(ctx context.Context, userID string, id string) error
		UsageCounts(ctx context.Context, userID string) (map[string]int, error)
	}

	categoryService struct {
		categoryRepository CategoryRepository
		products           ProductCounter
	}
)

func NewCategoryService(categoryRepository CategoryRepository, products ProductCounter) CategoryService {
	return &categoryService{
		categoryRepository: categoryRepository,
		products:           products,
	}
}

func (s *categoryService) UsageCounts(ctx context.Context, userID string) (map[string]int, error) {
	return s.products.CountProductsByCategory(ctx, userID)
}

func (s *categoryService) GetCategories(ctx context.Context, userID string) ([]domain.CategoryResponse, error) {
	categories, err := s.categoryRepository.GetCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.UsageCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]domain.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, toResponse(c, counts[strings.TrimSpace(c.Name)]))
	}
	return res, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, userID string, req domain.CategoryRequest) (domain.CategoryResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.CategoryResponse{}, domain.ErrParseUUID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CategoryResponse{}, domain.ErrCategoryNameRequired
	}

	category := &entities.Category{
		ID:          uuid.New(),
		UserID:      userUUID,
		Name:        name,
		Description: optional(req.Description),
	}
	if err := s.categoryRepository.CreateCategory(ctx, category); err != nil {
		return domain.CategoryResponse{}, err
	}
	return toResponse(category, 0), nil
}

func (s *categoryService) owned(ctx context.Context, userID string, id string) (*entities.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrCategoryNotFound
	}
	category, err := s.categoryRepository.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	if category.UserID.String() != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// UpdateCategory renames the category only; products keep the name they
// were saved with.
func (s *categoryService) UpdateCategory(ctx context.Context, userID string, id string, req domain.CategoryRequest) (domain.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CategoryResponse{}, domain.ErrCategoryNameRequired
	}

	category, err := s.owned(ctx, userID, id)
	if err != nil {
		return domain.CategoryResponse{}, err
	}

	category.Name = name
	category.Description = optional(req.Description)
	if err := s.categoryRepository.UpdateCategory(ctx, category); err != nil {
		return domain.CategoryResponse{}, err
	}

	counts, err := s.UsageCounts(ctx, userID)
	if err != nil {
		return domain.CategoryResponse{}, err
	}
	return toResponse(category, counts[name]), nil
}

// DeleteCategory refuses while any product still uses the category's name.
func (s *categoryService) DeleteCategory(ctx context.Context, userID string, id string) error {
	category, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	counts, err := s.UsageCounts(ctx, userID)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(category.Name)
	if n := counts[name]; n > 0 {
		return &domain.CategoryInUseError{Name: name, Count: n}
	}

	return s.categoryRepository.DeleteCategory(ctx, id)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toResponse(c *entities.Category, count int) domain.CategoryResponse {
	return domain.CategoryResponse{
		ID:           c.ID.String(),
		UserID:       c.UserID.String(),
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: count,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
