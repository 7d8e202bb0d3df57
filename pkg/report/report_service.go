// Package report renders a user's inventory as CSV and publishes it to
// object storage.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/internal/utils"
	"lifecycle/internal/utils/storage"
	"lifecycle/pkg/expiry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	ContentType = "text/csv"

	// LinkLifetime is the longest an S3 SigV4 presigned link may live.
	LinkLifetime = 7 * 24 * time.Hour
)

var header = []string{"name", "category", "supplier", "location", "batch number", "expiry date", "quantity", "status"}

type (
	ProductSource interface {
		GetProductsByUserID(ctx context.Context, userID string) ([]*entities.Product, error)
	}

	ReportService interface {
		ExportInventory(ctx context.Context, userID string) (domain.ExportResponse, error)
	}

	reportService struct {
		products ProductSource
		s3       storage.AwsS3
		now      func() time.Time
	}
)

func NewReportService(products ProductSource, s3 storage.AwsS3) ReportService {
	return &reportService{
		products: products,
		s3:       s3,
		now:      utils.Now,
	}
}

func (s *reportService) ExportInventory(ctx context.Context, userID string) (domain.ExportResponse, error) {
	products, err := s.products.GetProductsByUserID(ctx, userID)
	if err != nil {
		return domain.ExportResponse{}, err
	}

	now := s.now()
	body, batches, err := RenderCSV(products, expiry.Today(now))
	if err != nil {
		return domain.ExportResponse{}, err
	}

	key := ObjectKey(userID, now)
	if err := s.s3.PutObject(ctx, key, body, ContentType); err != nil {
		return domain.ExportResponse{}, err
	}

	url, err := s.s3.PresignGetObject(ctx, key, LinkLifetime)
	if err != nil {
		return domain.ExportResponse{}, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"key":      key,
		"products": len(products),
		"batches":  batches,
	}).Info("inventory report exported")

	return domain.ExportResponse{
		URL:       url,
		ExpiresAt: now.Add(LinkLifetime),
		Products:  len(products),
		Batches:   batches,
	}, nil
}

func ObjectKey(userID string, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s.csv", userID, at.UTC().Format("20060102T150405Z"))
}

// RenderCSV writes one row per batch. A product without batches still gets
// a row with the batch columns left empty. It returns the number of batch
// rows written.
func RenderCSV(products []*entities.Product, today time.Time) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, 0, errors.Wrap(err, "write csv header")
	}

	batches := 0
	for _, p := range products {
		if p == nil {
			continue
		}
		base := []string{p.Name, p.Category, deref(p.Supplier), deref(p.Location)}
		if len(p.Batches) == 0 {
			if err := w.Write(append(base, "", "", "", "")); err != nil {
				return nil, 0, errors.Wrap(err, "write csv row")
			}
			continue
		}
		for _, b := range p.Batches {
			if b == nil {
				continue
			}
			row := append(append([]string{}, base...),
				deref(b.BatchNumber),
				b.ExpiryDate,
				quantity(b.Quantity),
				status(b.ExpiryDate, today),
			)
			if err := w.Write(row); err != nil {
				return nil, 0, errors.Wrap(err, "write csv row")
			}
			batches++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), batches, nil
}

func status(date string, today time.Time) string {
	days, err := expiry.DaysUntil(date, today)
	if err != nil {
		return ""
	}
	return string(expiry.Classify(days))
}

func quantity(q *int) string {
	if q == nil {
		return ""
	}
	return strconv.Itoa(*q)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
