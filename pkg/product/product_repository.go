package product

import (
	"context"
	"strings"

	"lifecycle/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Search   string
	Category string
}

type (
	ProductRepository interface {
		GetProducts(ctx context.Context, userID string, filter ListFilter) ([]*entities.Product, error)
		GetProductsByUserID(ctx context.Context, userID string) ([]*entities.Product, error)
		GetProductByID(ctx context.Context, id string) (*entities.Product, error)
		CreateProduct(ctx context.Context, product *entities.Product) error
		UpdateProduct(ctx context.Context, product *entities.Product) error
		DeleteProduct(ctx context.Context, userID string, id string) error
		DeleteProducts(ctx context.Context, userID string, ids []string) error
		CountProductsByCategory(ctx context.Context, userID string) (map[string]int, error)

		GetBatchByID(ctx context.Context, id string) (*entities.ProductBatch, error)
		CountBatches(ctx context.Context, productID string) (int64, error)
		CreateBatches(ctx context.Context, batches []*entities.ProductBatch) error
		UpdateBatch(ctx context.Context, batch *entities.ProductBatch) error
		DeleteBatch(ctx context.Context, id string) error

		// WithProductLock runs fn in a transaction that holds the product row
		// lock. fn receives a repository bound to that transaction.
		WithProductLock(ctx context.Context, productID string, fn func(repo ProductRepository) error) error
	}

	productRepository struct {
		db *gorm.DB
	}
)

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func preloadBatches(db *gorm.DB) *gorm.DB {
	return db.Preload("Batches", func(db *gorm.DB) *gorm.DB {
		return db.Order("expiry_date asc")
	})
}

func (r *productRepository) GetProducts(ctx context.Context, userID string, filter ListFilter) ([]*entities.Product, error) {
	var products []*entities.Product

	query := preloadBatches(r.db.WithContext(ctx)).Where("user_id = ?", userID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(name ILIKE ? OR category ILIKE ? OR notes ILIKE ?)", like, like, like)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Order("added_date desc").Order("created_at desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductsByUserID(ctx context.Context, userID string) ([]*entities.Product, error) {
	return r.GetProducts(ctx, userID, ListFilter{})
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*entities.Product, error) {
	var product entities.Product
	if err := preloadBatches(r.db.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts only the product row; batches are written
// separately with CreateBatches.
func (r *productRepository) CreateProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Model(product).
		Omit(clause.Associations).
		Select("name", "category", "supplier", "location", "notes", "barcode", "updated_at").
		Updates(product).Error
}

func (r *productRepository) DeleteProduct(ctx context.Context, userID string, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Product{}).Error
}

func (r *productRepository) DeleteProducts(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&entities.Product{}).Error
}

func (r *productRepository) CountProductsByCategory(ctx context.Context, userID string) (map[string]int, error) {
	var rows []struct {
		Category string
		Total    int
	}
	if err := r.db.WithContext(ctx).Model(&entities.Product{}).
		Select("TRIM(category) AS category, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("TRIM(category)").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Total
	}
	return counts, nil
}

func (r *productRepository) GetBatchByID(ctx context.Context, id string) (*entities.ProductBatch, error) {
	var batch entities.ProductBatch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *productRepository) CountBatches(ctx context.Context, productID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.ProductBatch{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productRepository) CreateBatches(ctx context.Context, batches []*entities.ProductBatch) error {
	if len(batches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&batches).Error
}

func (r *productRepository) UpdateBatch(ctx context.Context, batch *entities.ProductBatch) error {
	return r.db.WithContext(ctx).Model(batch).
		Select("batch_number", "expiry_date", "quantity", "updated_at").
		Updates(batch).Error
}

func (r *productRepository) DeleteBatch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.ProductBatch{}).Error
}

func (r *productRepository) WithProductLock(ctx context.Context, productID string, fn func(repo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked entities.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", productID).
			First(&locked).Error; err != nil {
			return err
		}
		return fn(&productRepository{db: tx})
	})
}
