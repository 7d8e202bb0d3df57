package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "7d7c1d0e-3f5e-4f58-9d8c-2f8f3b0a9c11"

type stubProductService struct {
	created  domain.CreateProductRequest
	getErr   error
	createFn func(req domain.CreateProductRequest) (domain.ProductResponse, error)
	listed   domain.ListProductsQuery
	deleted  []string
}

func (s *stubProductService) ListProducts(_ context.Context, _ string, q domain.ListProductsQuery) ([]domain.ProductResponse, error) {
	s.listed = q
	return []domain.ProductResponse{}, nil
}

func (s *stubProductService) GetProduct(_ context.Context, _ string, id string) (domain.ProductResponse, error) {
	if s.getErr != nil {
		return domain.ProductResponse{}, s.getErr
	}
	return domain.ProductResponse{ID: id}, nil
}

func (s *stubProductService) CreateProduct(_ context.Context, _ string, req domain.CreateProductRequest) (domain.ProductResponse, error) {
	s.created = req
	return s.createFn(req)
}

func (s *stubProductService) UpdateProduct(context.Context, string, string, domain.UpdateProductRequest) (domain.ProductResponse, error) {
	return domain.ProductResponse{}, nil
}

func (s *stubProductService) DeleteProduct(context.Context, string, string) error { return nil }

func (s *stubProductService) DeleteProducts(_ context.Context, _ string, req domain.BulkDeleteProductsRequest) error {
	s.deleted = req.IDs
	return nil
}

func (s *stubProductService) CreateBatch(context.Context, string, string, domain.BatchRequest) (domain.BatchResponse, error) {
	return domain.BatchResponse{}, nil
}

func (s *stubProductService) UpdateBatch(context.Context, string, string, string, domain.BatchRequest) (domain.BatchResponse, error) {
	return domain.BatchResponse{}, nil
}

func (s *stubProductService) DeleteBatch(context.Context, string, string, string) error {
	return domain.ErrLastBatch
}

func (s *stubProductService) GetDashboard(context.Context, string) (domain.DashboardResponse, error) {
	return domain.DashboardResponse{}, nil
}

func (s *stubProductService) GetAlerts(context.Context, string) (domain.AlertsResponse, error) {
	return domain.AlertsResponse{}, nil
}

type stubReportService struct{}

func (stubReportService) ExportInventory(context.Context, string) (domain.ExportResponse, error) {
	return domain.ExportResponse{URL: "https://bucket/reports/x.csv", Products: 1, Batches: 2}, nil
}

type stubCategoryService struct {
	deleteErr error
}

func (s *stubCategoryService) GetCategories(context.Context, string) ([]domain.CategoryResponse, error) {
	return nil, nil
}

func (s *stubCategoryService) CreateCategory(context.Context, string, domain.CategoryRequest) (domain.CategoryResponse, error) {
	return domain.CategoryResponse{}, domain.ErrCategoryNameRequired
}

func (s *stubCategoryService) UpdateCategory(context.Context, string, string, domain.CategoryRequest) (domain.CategoryResponse, error) {
	return domain.CategoryResponse{}, nil
}

func (s *stubCategoryService) DeleteCategory(context.Context, string, string) error {
	return s.deleteErr
}

func (s *stubCategoryService) UsageCounts(context.Context, string) (map[string]int, error) {
	return nil, nil
}

type stubBarcodeService struct{}

func (stubBarcodeService) Lookup(_ context.Context, code string) domain.BarcodeResult {
	return domain.BarcodeResult{Barcode: code}
}

type stubUserService struct{}

func (stubUserService) Register(context.Context, domain.RegisterRequest) (domain.UserResponse, error) {
	return domain.UserResponse{}, domain.ErrEmailAlreadyExists
}

func (stubUserService) Login(context.Context, domain.LoginRequest) (domain.LoginResponse, error) {
	return domain.LoginResponse{}, domain.ErrInvalidCredentials
}

func (stubUserService) Me(_ context.Context, userID string) (domain.UserResponse, error) {
	return domain.UserResponse{ID: userID}, nil
}

func (stubUserService) ForgotPassword(context.Context, domain.ForgotPasswordRequest) error { return nil }

func (stubUserService) ResetPassword(context.Context, domain.ResetPasswordRequest) error {
	return domain.ErrResetTokenInvalid
}

// newTestApp mounts the handlers with a fake auth step that only sets the
// caller id.
func newTestApp(products *stubProductService, categories *stubCategoryService) *fiber.App {
	utils.InitValidator()
	app := fiber.New()
	asUser := func(c *fiber.Ctx) error {
		c.Locals("user_id", testUserID)
		return c.Next()
	}

	ph := NewProductHandler(products, stubReportService{}, utils.Validate)
	app.Get("/products", asUser, ph.ListProducts)
	app.Get("/products/export", asUser, ph.ExportInventory)
	app.Post("/products/bulk-delete", asUser, ph.DeleteProducts)
	app.Post("/products", asUser, ph.CreateProduct)
	app.Get("/products/:id", asUser, ph.GetProduct)
	app.Delete("/products/:id/batches/:batchId", asUser, ph.DeleteBatch)

	ch := NewCategoryHandler(categories, utils.Validate)
	app.Post("/categories", asUser, ch.CreateCategory)
	app.Delete("/categories/:id", asUser, ch.DeleteCategory)

	bh := NewBarcodeHandler(stubBarcodeService{})
	app.Get("/barcodes/:code", asUser, bh.Lookup)

	uh := NewUserHandler(stubUserService{}, utils.Validate)
	app.Post("/auth/register", uh.Register)
	app.Post("/auth/login", uh.Login)
	app.Post("/auth/reset", uh.ResetPassword)
	app.Get("/auth/me", asUser, uh.Me)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, presenters.Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out presenters.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCreateProduct(t *testing.T) {
	products := &stubProductService{createFn: func(req domain.CreateProductRequest) (domain.ProductResponse, error) {
		return domain.ProductResponse{ID: "p1", Name: req.Name}, nil
	}}
	app := newTestApp(products, &stubCategoryService{})

	status, res := do(t, app, http.MethodPost, "/products",
		`{"name":"Milk","category":"Dairy","batches":[{"expiry_date":"2025-02-01","quantity":"12"}]}`)

	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, res.Status)
	assert.Equal(t, domain.MessageSuccessAddProduct, res.Message)
	require.Len(t, products.created.Batches, 1)
	assert.Equal(t, domain.QuantityInput("12"), products.created.Batches[0].Quantity)
}

func TestCreateProductValidationMessage(t *testing.T) {
	products := &stubProductService{createFn: func(domain.CreateProductRequest) (domain.ProductResponse, error) {
		return domain.ProductResponse{}, domain.NewValidationError("Product name is required")
	}}
	app := newTestApp(products, &stubCategoryService{})

	status, res := do(t, app, http.MethodPost, "/products", `{"name":"","batches":[]}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, res.Status)
	assert.Equal(t, "Failed to save", res.Message)
	assert.Equal(t, "Product name is required", res.Error)
}

func TestCreateProductMalformedBody(t *testing.T) {
	app := newTestApp(&stubProductService{}, &stubCategoryService{})

	status, res := do(t, app, http.MethodPost, "/products", `{"name":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, domain.MessageFailedBodyRequest, res.Message)
}

func TestGetProductErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrProductNotFound, fiber.StatusNotFound},
		{domain.ErrUnauthorizedProduct, fiber.StatusForbidden},
		{errors.New("connection refused"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := newTestApp(&stubProductService{getErr: tc.err}, &stubCategoryService{})
		status, res := do(t, app, http.MethodGet, "/products/abc", "")
		assert.Equal(t, tc.want, status, tc.err.Error())
		assert.Equal(t, tc.err.Error(), res.Error)
	}
}

func TestListProductsQuery(t *testing.T) {
	products := &stubProductService{}
	app := newTestApp(products, &stubCategoryService{})

	status, _ := do(t, app, http.MethodGet, "/products?search=milk&category=Dairy&sort=name", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "milk", products.listed.Search)
	assert.Equal(t, "Dairy", products.listed.Category)
	assert.Equal(t, "name", products.listed.Sort)

	status, res := do(t, app, http.MethodGet, "/products?sort=price", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, domain.ErrInvalidSort.Error(), res.Error)
}

func TestBulkDeleteProducts(t *testing.T) {
	products := &stubProductService{}
	app := newTestApp(products, &stubCategoryService{})

	ids := `["1b4e28ba-2fa1-11d2-883f-0016d3cca427","6ba7b810-9dad-11d1-80b4-00c04fd430c8"]`
	status, res := do(t, app, http.MethodPost, "/products/bulk-delete", `{"ids":`+ids+`}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, domain.MessageSuccessDeleteProducts, res.Message)
	assert.Len(t, products.deleted, 2)

	status, _ = do(t, app, http.MethodPost, "/products/bulk-delete", `{"ids":["not-a-uuid"]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeleteLastBatch(t *testing.T) {
	app := newTestApp(&stubProductService{}, &stubCategoryService{})

	status, res := do(t, app, http.MethodDelete, "/products/p1/batches/b1", "")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Keep at least one batch", res.Error)
}

func TestExportInventory(t *testing.T) {
	app := newTestApp(&stubProductService{}, &stubCategoryService{})

	status, res := do(t, app, http.MethodGet, "/products/export", "")

	assert.Equal(t, fiber.StatusOK, status)
	data := res.Data.(map[string]any)
	assert.Equal(t, "https://bucket/reports/x.csv", data["url"])
	assert.Equal(t, float64(2), data["batches"])
}

func TestDeleteCategoryInUse(t *testing.T) {
	categories := &stubCategoryService{deleteErr: &domain.CategoryInUseError{Name: "Dairy", Count: 3}}
	app := newTestApp(&stubProductService{}, categories)

	status, res := do(t, app, http.MethodDelete, "/categories/c1", "")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, domain.MessageCannotDeleteCategory, res.Message)
	assert.Equal(t, "3 product(s) use this category. Change their category first.", res.Error)
}

func TestCreateCategoryNameRequired(t *testing.T) {
	app := newTestApp(&stubProductService{}, &stubCategoryService{})

	status, res := do(t, app, http.MethodPost, "/categories", `{"name":"  "}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Name is required", res.Error)
}

func TestBarcodeLookupAlwaysOK(t *testing.T) {
	app := newTestApp(&stubProductService{}, &stubCategoryService{})

	status, res := do(t, app, http.MethodGet, "/barcodes/5449000000996", "")

	assert.Equal(t, fiber.StatusOK, status)
	data := res.Data.(map[string]any)
	assert.Equal(t, "5449000000996", data["barcode"])
	assert.Nil(t, data["name"])
}

func TestAuthErrors(t *testing.T) {
	app := newTestApp(&stubProductService{}, &stubCategoryService{})

	status, res := do(t, app, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"secret"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, domain.ErrInvalidCredentials.Error(), res.Error)

	status, _ = do(t, app, http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"secret"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/auth/register", `{"email":"a@b.co","password":"longenough"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = do(t, app, http.MethodPost, "/auth/reset", `{"token":"x","password":"longenough"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, res = do(t, app, http.MethodGet, "/auth/me", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, testUserID, res.Data.(map[string]any)["id"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, statusFor(nil))
	assert.Equal(t, fiber.StatusBadRequest, statusFor(domain.NewValidationError("Batch 1: expiry date is required")))
	assert.Equal(t, fiber.StatusBadRequest, statusFor(domain.ErrInvalidTheme))
	assert.Equal(t, fiber.StatusNotFound, statusFor(domain.ErrFeedbackNotFound))
	assert.Equal(t, fiber.StatusConflict, statusFor(domain.ErrAlreadyUpvoted))
	assert.Equal(t, fiber.StatusForbidden, statusFor(domain.ErrUnauthorizedProduct))
}
