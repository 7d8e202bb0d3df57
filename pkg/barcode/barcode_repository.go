package barcode

import (
	"context"

	"lifecycle/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	BarcodeRepository interface {
		GetCached(ctx context.Context, barcode string) (*entities.BarcodeCache, error)
		UpsertCache(ctx context.Context, entry *entities.BarcodeCache) error
	}

	barcodeRepository struct {
		db *gorm.DB
	}
)

func NewBarcodeRepository(db *gorm.DB) BarcodeRepository {
	return &barcodeRepository{db: db}
}

func (r *barcodeRepository) GetCached(ctx context.Context, barcode string) (*entities.BarcodeCache, error) {
	var entry entities.BarcodeCache
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *barcodeRepository) UpsertCache(ctx context.Context, entry *entities.BarcodeCache) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "barcode"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "supplier", "category", "updated_at"}),
	}).Create(entry).Error
}
