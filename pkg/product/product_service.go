package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"
	"lifecycle/internal/utils"
	"lifecycle/pkg/expiry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const dashboardListLimit = 8

type (
	// Rescheduler refreshes a user's pending expiry notifications.
	Rescheduler interface {
		RescheduleForUser(ctx context.Context, userID string) (domain.RescheduleResponse, error)
	}

	ProductService interface {
		ListProducts(ctx context.Context, userID string, query domain.ListProductsQuery) ([]domain.ProductResponse, error)
		GetProduct(ctx context.Context, userID string, id string) (domain.ProductResponse, error)
		CreateProduct(ctx context.Context, userID string, req domain.CreateProductRequest) (domain.ProductResponse, error)
		UpdateProduct(ctx context.Context, userID string, id string, req domain.UpdateProductRequest) (domain.ProductResponse, error)
		DeleteProduct(ctx context.Context, userID string, id string) error
		DeleteProducts(ctx context.Context, userID string, req domain.BulkDeleteProductsRequest) error

		CreateBatch(ctx context.Context, userID string, productID string, req domain.BatchRequest) (domain.BatchResponse, error)
		UpdateBatch(ctx context.Context, userID string, productID string, batchID string, req domain.BatchRequest) (domain.BatchResponse, error)
		DeleteBatch(ctx context.Context, userID string, productID string, batchID string) error

		GetDashboard(ctx context.Context, userID string) (domain.DashboardResponse, error)
		GetAlerts(ctx context.Context, userID string) (domain.AlertsResponse, error)
	}

	productService struct {
		productRepository ProductRepository
		rescheduler       Rescheduler
		now               func() time.Time
	}
)

func NewProductService(productRepository ProductRepository, rescheduler Rescheduler) ProductService {
	return &productService{
		productRepository: productRepository,
		rescheduler:       rescheduler,
		now:               utils.Now,
	}
}

func (s *productService) today() time.Time {
	return expiry.Today(s.now())
}

// reschedule keeps the notification summaries in line with the inventory
// after a write. A failure here does not fail the write.
func (s *productService) reschedule(ctx context.Context, userID string) {
	if s.rescheduler == nil {
		return
	}
	if _, err := s.rescheduler.RescheduleForUser(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to reschedule notifications")
	}
}

func (s *productService) ListProducts(ctx context.Context, userID string, query domain.ListProductsQuery) ([]domain.ProductResponse, error) {
	key := expiry.SortKey(strings.TrimSpace(query.Sort))
	if !key.Valid() {
		return nil, domain.ErrInvalidSort
	}

	products, err := s.productRepository.GetProducts(ctx, userID, ListFilter{
		Search:   query.Search,
		Category: query.Category,
	})
	if err != nil {
		return nil, err
	}

	expiry.Sort(products, key)

	today := s.today()
	res := make([]domain.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p, today))
	}
	return res, nil
}

// owned loads a product and checks that it belongs to userID.
func (s *productService) owned(ctx context.Context, userID string, id string) (*entities.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}
	product, err := s.productRepository.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	if product.UserID.String() != userID {
		return nil, domain.ErrUnauthorizedProduct
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, userID string, id string) (domain.ProductResponse, error) {
	product, err := s.owned(ctx, userID, id)
	if err != nil {
		return domain.ProductResponse{}, err
	}
	return toProductResponse(product, s.today()), nil
}

// CreateProduct writes the product and then its batches. The two writes
// are independent; a failure on the second leaves the product in place.
func (s *productService) CreateProduct(ctx context.Context, userID string, req domain.CreateProductRequest) (domain.ProductResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, domain.ErrParseUUID
	}

	quantities, err := validateProduct(req.Name, req.Category, req.Batches)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	today := s.today()
	addedDate := expiry.DateString(today)

	product := &entities.Product{
		ID:        uuid.New(),
		UserID:    userUUID,
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		Supplier:  optional(req.Supplier),
		Location:  optional(req.Location),
		Notes:     optional(req.Notes),
		Barcode:   optional(req.Barcode),
		AddedDate: addedDate,
	}
	if err := s.productRepository.CreateProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}

	batches := make([]*entities.ProductBatch, 0, len(req.Batches))
	for i, b := range req.Batches {
		batches = append(batches, &entities.ProductBatch{
			ID:          uuid.New(),
			ProductID:   product.ID,
			BatchNumber: optional(b.BatchNumber),
			ExpiryDate:  strings.TrimSpace(b.ExpiryDate),
			Quantity:    quantities[i],
			AddedDate:   addedDate,
		})
	}
	if err := s.productRepository.CreateBatches(ctx, batches); err != nil {
		return domain.ProductResponse{}, err
	}
	product.Batches = batches

	s.reschedule(ctx, userID)

	return toProductResponse(product, today), nil
}

// UpdateProduct replaces the product's fields. When req.Batches is non-nil
// the stored batches are reconciled against it.
func (s *productService) UpdateProduct(ctx context.Context, userID string, id string, req domain.UpdateProductRequest) (domain.ProductResponse, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return domain.ProductResponse{}, err
	}

	quantities, err := validateProduct(req.Name, req.Category, req.Batches)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	var product *entities.Product
	err = s.productRepository.WithProductLock(ctx, id, func(repo ProductRepository) error {
		var err error
		product, err = repo.GetProductByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Batches != nil && len(req.Batches) == 0 && len(product.Batches) > 0 {
			return domain.ErrLastBatch
		}
		existing := make(map[string]*entities.ProductBatch, len(product.Batches))
		for _, b := range product.Batches {
			existing[b.ID.String()] = b
		}
		for _, b := range req.Batches {
			if b.ID != "" {
				if _, ok := existing[b.ID]; !ok {
					return domain.ErrBatchNotFound
				}
			}
		}

		product.Name = strings.TrimSpace(req.Name)
		product.Category = strings.TrimSpace(req.Category)
		product.Supplier = optional(req.Supplier)
		product.Location = optional(req.Location)
		product.Notes = optional(req.Notes)
		product.Barcode = optional(req.Barcode)

		if err := repo.UpdateProduct(ctx, product); err != nil {
			return err
		}

		if req.Batches != nil {
			batches, err := s.reconcileBatches(ctx, repo, product, existing, req.Batches, quantities)
			if err != nil {
				return err
			}
			product.Batches = batches
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotFound
		}
		return domain.ProductResponse{}, err
	}

	s.reschedule(ctx, userID)

	return toProductResponse(product, s.today()), nil
}

func (s *productService) reconcileBatches(
	ctx context.Context,
	repo ProductRepository,
	product *entities.Product,
	existing map[string]*entities.ProductBatch,
	reqs []domain.BatchRequest,
	quantities []*int,
) ([]*entities.ProductBatch, error) {
	keep := make(map[string]bool, len(reqs))
	for _, b := range reqs {
		if b.ID != "" {
			keep[b.ID] = true
		}
	}
	for id := range existing {
		if !keep[id] {
			if err := repo.DeleteBatch(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	addedDate := expiry.DateString(s.today())
	result := make([]*entities.ProductBatch, 0, len(reqs))
	var created []*entities.ProductBatch
	for i, b := range reqs {
		if b.ID == "" {
			batch := &entities.ProductBatch{
				ID:          uuid.New(),
				ProductID:   product.ID,
				BatchNumber: optional(b.BatchNumber),
				ExpiryDate:  strings.TrimSpace(b.ExpiryDate),
				Quantity:    quantities[i],
				AddedDate:   addedDate,
			}
			created = append(created, batch)
			result = append(result, batch)
			continue
		}
		batch := existing[b.ID]
		batch.BatchNumber = optional(b.BatchNumber)
		batch.ExpiryDate = strings.TrimSpace(b.ExpiryDate)
		batch.Quantity = quantities[i]
		if err := repo.UpdateBatch(ctx, batch); err != nil {
			return nil, err
		}
		result = append(result, batch)
	}
	if err := repo.CreateBatches(ctx, created); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID string, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.productRepository.DeleteProduct(ctx, userID, id); err != nil {
		return err
	}
	s.reschedule(ctx, userID)
	return nil
}

// DeleteProducts removes the listed products owned by userID. Ids of other
// users' products are ignored. An empty list does nothing.
func (s *productService) DeleteProducts(ctx context.Context, userID string, req domain.BulkDeleteProductsRequest) error {
	if len(req.IDs) == 0 {
		return nil
	}
	if err := s.productRepository.DeleteProducts(ctx, userID, req.IDs); err != nil {
		return err
	}
	s.reschedule(ctx, userID)
	return nil
}

func (s *productService) CreateBatch(ctx context.Context, userID string, productID string, req domain.BatchRequest) (domain.BatchResponse, error) {
	product, err := s.owned(ctx, userID, productID)
	if err != nil {
		return domain.BatchResponse{}, err
	}

	quantity, err := validateBatch(req)
	if err != nil {
		return domain.BatchResponse{}, err
	}

	today := s.today()
	batch := &entities.ProductBatch{
		ID:          uuid.New(),
		ProductID:   product.ID,
		BatchNumber: optional(req.BatchNumber),
		ExpiryDate:  strings.TrimSpace(req.ExpiryDate),
		Quantity:    quantity,
		AddedDate:   expiry.DateString(today),
	}
	if err := s.productRepository.CreateBatches(ctx, []*entities.ProductBatch{batch}); err != nil {
		return domain.BatchResponse{}, err
	}

	s.reschedule(ctx, userID)

	return toBatchResponse(batch, today), nil
}

// ownedBatch loads a batch and checks that it belongs to the user's product.
func (s *productService) ownedBatch(ctx context.Context, userID string, productID string, batchID string) (*entities.ProductBatch, error) {
	if _, err := s.owned(ctx, userID, productID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, domain.ErrBatchNotFound
	}
	batch, err := s.productRepository.GetBatchByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	if batch.ProductID.String() != productID {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (s *productService) UpdateBatch(ctx context.Context, userID string, productID string, batchID string, req domain.BatchRequest) (domain.BatchResponse, error) {
	batch, err := s.ownedBatch(ctx, userID, productID, batchID)
	if err != nil {
		return domain.BatchResponse{}, err
	}

	quantity, err := validateBatch(req)
	if err != nil {
		return domain.BatchResponse{}, err
	}

	batch.BatchNumber = optional(req.BatchNumber)
	batch.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	batch.Quantity = quantity

	if err := s.productRepository.UpdateBatch(ctx, batch); err != nil {
		return domain.BatchResponse{}, err
	}

	s.reschedule(ctx, userID)

	return toBatchResponse(batch, s.today()), nil
}

// DeleteBatch refuses to remove a product's only batch.
func (s *productService) DeleteBatch(ctx context.Context, userID string, productID string, batchID string) error {
	if _, err := s.ownedBatch(ctx, userID, productID, batchID); err != nil {
		return err
	}

	err := s.productRepository.WithProductLock(ctx, productID, func(repo ProductRepository) error {
		count, err := repo.CountBatches(ctx, productID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return domain.ErrLastBatch
		}
		return repo.DeleteBatch(ctx, batchID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotFound
		}
		return err
	}

	s.reschedule(ctx, userID)
	return nil
}

func (s *productService) GetDashboard(ctx context.Context, userID string) (domain.DashboardResponse, error) {
	products, err := s.productRepository.GetProductsByUserID(ctx, userID)
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	today := s.today()
	stats := expiry.Summarize(products, today)

	soon := expiry.ExpiringSoon(products, today, dashboardListLimit)
	list := make([]domain.AlertItem, 0, len(soon))
	for _, p := range soon {
		list = append(list, toAlertItem(p, today))
	}

	return domain.DashboardResponse{
		Stats: domain.DashboardStats{
			TotalProducts: stats.TotalProducts,
			ExpiringSoon:  stats.ExpiringSoon,
			Expired:       stats.Expired,
			TotalUnits:    stats.TotalUnits,
		},
		ExpiringToday: expiry.CountExpiringToday(products, today),
		ExpiringSoon:  list,
	}, nil
}

func (s *productService) GetAlerts(ctx context.Context, userID string) (domain.AlertsResponse, error) {
	products, err := s.productRepository.GetProductsByUserID(ctx, userID)
	if err != nil {
		return domain.AlertsResponse{}, err
	}

	today := s.today()
	buckets := expiry.Bucket(products, today)

	items := func(list []*entities.Product) []domain.AlertItem {
		out := make([]domain.AlertItem, 0, len(list))
		for _, p := range list {
			out = append(out, toAlertItem(p, today))
		}
		return out
	}

	return domain.AlertsResponse{
		Today:   items(buckets.Today),
		Soon:    items(buckets.Soon),
		Expired: items(buckets.Expired),
	}, nil
}
