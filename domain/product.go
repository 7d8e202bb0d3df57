package domain

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	MessageSuccessAddProduct      = "Product added"
	MessageSuccessUpdateProduct   = "Product updated"
	MessageSuccessDeleteProduct   = "Product deleted"
	MessageSuccessDeleteProducts  = "Products deleted"
	MessageSuccessGetProducts     = "products retrieved successfully"
	MessageSuccessAddBatch        = "Batch added"
	MessageSuccessUpdateBatch     = "Batch updated"
	MessageSuccessDeleteBatch     = "Batch deleted"
	MessageSuccessGetDashboard    = "dashboard retrieved successfully"
	MessageSuccessGetAlerts       = "alerts retrieved successfully"
	MessageSuccessExportInventory = "inventory exported successfully"

	MessageFailedAddProduct      = "Failed to save"
	MessageFailedUpdateProduct   = "Failed to save"
	MessageFailedDeleteProduct   = "Failed to delete"
	MessageFailedGetProducts     = "Failed to load"
	MessageFailedAddBatch        = "Failed to save"
	MessageFailedUpdateBatch     = "Failed to save"
	MessageFailedDeleteBatch     = "Failed to delete"
	MessageFailedGetDashboard    = "Failed to load"
	MessageFailedGetAlerts       = "Failed to load"
	MessageFailedExportInventory = "failed to export inventory"

	ErrProductNotFound     = errors.New("product not found")
	ErrBatchNotFound       = errors.New("batch not found")
	ErrLastBatch           = errors.New("Keep at least one batch")
	ErrUnauthorizedProduct = errors.New("unauthorized access to product")
	ErrInvalidSort         = errors.New("sort must be one of expiry, name, category, quantity")
)

// QuantityInput accepts a JSON number, a numeric string, an empty string or
// null, so that a non-numeric value reaches the service and is reported as a
// validation message instead of a body parse failure.
type QuantityInput string

func (q *QuantityInput) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*q = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*q = QuantityInput(strings.TrimSpace(str))
		return nil
	}
	*q = QuantityInput(s)
	return nil
}

// Parse returns nil for an empty quantity and ok=false when the value is
// not a whole number >= 0.
func (q QuantityInput) Parse() (*int, bool) {
	s := strings.TrimSpace(string(q))
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, false
	}
	return &n, true
}

func QuantityOf(n int) QuantityInput {
	return QuantityInput(strconv.Itoa(n))
}

type (
	BatchRequest struct {
		ID          string        `json:"id" validate:"omitempty,uuid"`
		BatchNumber string        `json:"batch_number" validate:"max=100"`
		ExpiryDate  string        `json:"expiry_date"`
		Quantity    QuantityInput `json:"quantity"`
	}

	CreateProductRequest struct {
		Name     string         `json:"name" validate:"max=200"`
		Category string         `json:"category" validate:"max=100"`
		Supplier string         `json:"supplier" validate:"max=200"`
		Location string         `json:"location" validate:"max=200"`
		Notes    string         `json:"notes" validate:"max=2000"`
		Barcode  string         `json:"barcode" validate:"omitempty,barcode"`
		Batches  []BatchRequest `json:"batches" validate:"dive"`
	}

	// UpdateProductRequest replaces every product field. When Batches is
	// present the product's batches are reconciled against it: batches not
	// listed are deleted, entries without id are created, the rest updated.
	UpdateProductRequest struct {
		Name     string         `json:"name" validate:"max=200"`
		Category string         `json:"category" validate:"max=100"`
		Supplier string         `json:"supplier" validate:"max=200"`
		Location string         `json:"location" validate:"max=200"`
		Notes    string         `json:"notes" validate:"max=2000"`
		Barcode  string         `json:"barcode" validate:"omitempty,barcode"`
		Batches  []BatchRequest `json:"batches" validate:"omitempty,dive"`
	}

	ListProductsQuery struct {
		Search   string `query:"search"`
		Category string `query:"category"`
		Sort     string `query:"sort" validate:"omitempty,oneof=expiry name category quantity"`
	}

	BulkDeleteProductsRequest struct {
		IDs []string `json:"ids" validate:"dive,uuid"`
	}

	BatchResponse struct {
		ID              string    `json:"id"`
		ProductID       string    `json:"product_id"`
		BatchNumber     *string   `json:"batch_number"`
		ExpiryDate      string    `json:"expiry_date"`
		Quantity        *int      `json:"quantity"`
		AddedDate       string    `json:"added_date"`
		DaysUntilExpiry int       `json:"days_until_expiry"`
		Status          string    `json:"status"`
		StatusLabel     string    `json:"status_label"`
		CreatedAt       time.Time `json:"created_at"`
		UpdatedAt       time.Time `json:"updated_at"`
	}

	ProductResponse struct {
		ID              string          `json:"id"`
		UserID          string          `json:"user_id"`
		Name            string          `json:"name"`
		Category        string          `json:"category"`
		Supplier        *string         `json:"supplier"`
		Location        *string         `json:"location"`
		Notes           *string         `json:"notes"`
		Barcode         *string         `json:"barcode"`
		AddedDate       string          `json:"added_date"`
		Batches         []BatchResponse `json:"product_batches"`
		EarliestExpiry  *string         `json:"earliest_expiry"`
		DaysUntilExpiry *int            `json:"days_until_expiry"`
		Status          string          `json:"status,omitempty"`
		StatusLabel     string          `json:"status_label,omitempty"`
		TotalQuantity   int             `json:"total_quantity"`
	}

	AlertItem struct {
		ProductID       string  `json:"product_id"`
		Name            string  `json:"name"`
		Category        string  `json:"category"`
		ExpiryDate      string  `json:"expiry_date"`
		DaysUntilExpiry int     `json:"days_until_expiry"`
		Label           string  `json:"label"`
		Urgent          bool    `json:"urgent"`
		BatchNumber     *string `json:"batch_number"`
		Quantity        *int    `json:"quantity"`
	}

	AlertsResponse struct {
		Today   []AlertItem `json:"today"`
		Soon    []AlertItem `json:"soon"`
		Expired []AlertItem `json:"expired"`
	}

	DashboardStats struct {
		TotalProducts int `json:"total_products"`
		ExpiringSoon  int `json:"expiring_soon"`
		Expired       int `json:"expired"`
		TotalUnits    int `json:"total_units"`
	}

	DashboardResponse struct {
		Stats         DashboardStats `json:"stats"`
		ExpiringToday int            `json:"expiring_today"`
		ExpiringSoon  []AlertItem    `json:"expiring_soon"`
	}

	ExportResponse struct {
		URL       string    `json:"url"`
		ExpiresAt time.Time `json:"expires_at"`
		Products  int       `json:"products"`
		Batches   int       `json:"batches"`
	}
)
