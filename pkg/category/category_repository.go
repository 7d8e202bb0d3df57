package category

import (
	"context"

	"lifecycle/entities"

	"gorm.io/gorm"
)

type (
	CategoryRepository interface {
		GetCategories(ctx context.Context, userID string) ([]*entities.Category, error)
		GetCategoryByID(ctx context.Context, id string) (*entities.Category, error)
		CreateCategory(ctx context.Context, category *entities.Category) error
		UpdateCategory(ctx context.Context, category *entities.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	categoryRepository struct {
		db *gorm.DB
	}
)

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetCategories(ctx context.Context, userID string) ([]*entities.Category, error) {
	var categories []*entities.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id string) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *entities.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *entities.Category) error {
	return r.db.WithContext(ctx).Model(category).
		Select("name", "description", "updated_at").
		Updates(category).Error
}

func (r *categoryRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Category{}).Error
}
