package product

import (
	"strings"

	"lifecycle/domain"
	"lifecycle/pkg/expiry"
)

// validateProduct checks the fields a product form requires and returns
// the parsed batch quantities in request order. Batches are numbered from 1
// in the messages.
func validateProduct(name, category string, batches []domain.BatchRequest) ([]*int, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("Product name is required")
	}
	if strings.TrimSpace(category) == "" {
		return nil, domain.NewValidationError("Category is required")
	}

	quantities := make([]*int, len(batches))
	for i, b := range batches {
		date := strings.TrimSpace(b.ExpiryDate)
		if date == "" {
			return nil, domain.NewValidationError("Batch %d: expiry date is required", i+1)
		}
		if _, err := expiry.ParseDate(date, nil); err != nil {
			return nil, domain.NewValidationError("Batch %d: expiry date must be yyyy-mm-dd", i+1)
		}
		q, ok := b.Quantity.Parse()
		if !ok {
			return nil, domain.NewValidationError("Batch %d: quantity must be a positive number", i+1)
		}
		quantities[i] = q
	}
	return quantities, nil
}

func validateBatch(b domain.BatchRequest) (*int, error) {
	date := strings.TrimSpace(b.ExpiryDate)
	if date == "" {
		return nil, domain.NewValidationError("Expiry date is required")
	}
	if _, err := expiry.ParseDate(date, nil); err != nil {
		return nil, domain.NewValidationError("Expiry date must be yyyy-mm-dd")
	}
	q, ok := b.Quantity.Parse()
	if !ok {
		return nil, domain.NewValidationError("Quantity must be a positive number")
	}
	return q, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
