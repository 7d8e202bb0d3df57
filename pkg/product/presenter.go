package product

import (
	"time"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/pkg/expiry"
)

func toBatchResponse(b *entities.ProductBatch, today time.Time) domain.BatchResponse {
	res := domain.BatchResponse{
		ID:          b.ID.String(),
		ProductID:   b.ProductID.String(),
		BatchNumber: b.BatchNumber,
		ExpiryDate:  b.ExpiryDate,
		Quantity:    b.Quantity,
		AddedDate:   b.AddedDate,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if days, err := expiry.DaysUntil(b.ExpiryDate, today); err == nil {
		status := expiry.Classify(days)
		res.DaysUntilExpiry = days
		res.Status = string(status)
		res.StatusLabel = expiry.Label(status, days)
	}
	return res
}

func toProductResponse(p *entities.Product, today time.Time) domain.ProductResponse {
	batches := make([]domain.BatchResponse, 0, len(p.Batches))
	for _, b := range p.Batches {
		batches = append(batches, toBatchResponse(b, today))
	}

	res := domain.ProductResponse{
		ID:            p.ID.String(),
		UserID:        p.UserID.String(),
		Name:          p.Name,
		Category:      p.Category,
		Supplier:      p.Supplier,
		Location:      p.Location,
		Notes:         p.Notes,
		Barcode:       p.Barcode,
		AddedDate:     p.AddedDate,
		Batches:       batches,
		TotalQuantity: expiry.TotalQuantity(p.Batches),
	}

	if ev := expiry.Evaluate(p.Batches, today); ev.OK {
		earliest, days := ev.Earliest, ev.Days
		res.EarliestExpiry = &earliest
		res.DaysUntilExpiry = &days
		res.Status = string(ev.Status)
		res.StatusLabel = ev.Label
	}
	return res
}

// toAlertItem describes a product by its earliest batch.
func toAlertItem(p *entities.Product, today time.Time) domain.AlertItem {
	item := domain.AlertItem{
		ProductID: p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
	}
	b := expiry.EarliestBatch(p.Batches)
	if b == nil {
		return item
	}
	item.ExpiryDate = b.ExpiryDate
	item.BatchNumber = b.BatchNumber
	item.Quantity = b.Quantity
	if days, err := expiry.DaysUntil(b.ExpiryDate, today); err == nil {
		item.DaysUntilExpiry = days
		item.Label = expiry.LongLabel(days)
		item.Urgent = days <= 0
	}
	return item
}
