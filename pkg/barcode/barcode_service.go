// Package barcode resolves scanned codes to product metadata, consulting
// the shared cache before the external catalog.
package barcode

import (
	"context"
	"errors"
	"strings"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	BarcodeService interface {
		// Lookup never fails: every problem degrades to an all-unknown
		// result.
		Lookup(ctx context.Context, code string) domain.BarcodeResult
	}

	barcodeService struct {
		barcodeRepository BarcodeRepository
		catalog           Catalog
	}
)

func NewBarcodeService(barcodeRepository BarcodeRepository, catalog Catalog) BarcodeService {
	return &barcodeService{
		barcodeRepository: barcodeRepository,
		catalog:           catalog,
	}
}

func (s *barcodeService) Lookup(ctx context.Context, code string) domain.BarcodeResult {
	code = strings.TrimSpace(code)
	result := domain.BarcodeResult{Barcode: code}
	if code == "" {
		return result
	}
	log := logrus.WithField("barcode", code)

	cached, err := s.barcodeRepository.GetCached(ctx, code)
	switch {
	case err == nil:
		result.Name = optional(cached.Name)
		result.Supplier = cached.Supplier
		result.Category = cached.Category
		result.Cached = true
		return result
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.WithError(err).Warn("barcode cache read failed")
	}

	product, err := s.catalog.Lookup(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrNotInCatalog) {
			log.WithError(err).Warn("catalog lookup failed")
		}
		return result
	}

	result.Name = optional(product.Name)
	result.Supplier = optional(product.Supplier)
	result.Category = optional(product.Category)

	entry := &entities.BarcodeCache{
		Barcode:  code,
		Name:     product.Name,
		Supplier: result.Supplier,
		Category: result.Category,
	}
	if err := s.barcodeRepository.UpsertCache(ctx, entry); err != nil {
		log.WithError(err).Warn("barcode cache write failed")
	}
	return result
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
