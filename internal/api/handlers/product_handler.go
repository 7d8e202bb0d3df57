package handlers

import (
	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/product"
	"lifecycle/pkg/report"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ProductHandler interface {
		ListProducts(c *fiber.Ctx) error
		GetProduct(c *fiber.Ctx) error
		CreateProduct(c *fiber.Ctx) error
		UpdateProduct(c *fiber.Ctx) error
		DeleteProduct(c *fiber.Ctx) error
		DeleteProducts(c *fiber.Ctx) error
		CreateBatch(c *fiber.Ctx) error
		UpdateBatch(c *fiber.Ctx) error
		DeleteBatch(c *fiber.Ctx) error
		GetDashboard(c *fiber.Ctx) error
		GetAlerts(c *fiber.Ctx) error
		ExportInventory(c *fiber.Ctx) error
	}

	productHandler struct {
		productService product.ProductService
		reportService  report.ReportService
		validator      *validator.Validate
	}
)

func NewProductHandler(productService product.ProductService, reportService report.ReportService, validator *validator.Validate) ProductHandler {
	return &productHandler{
		productService: productService,
		reportService:  reportService,
		validator:      validator,
	}
}

func (h *productHandler) ListProducts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	query := new(domain.ListProductsQuery)

	if err := c.QueryParser(query); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetProducts, err)
	}

	if err := h.validator.Struct(query); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetProducts, domain.ErrInvalidSort)
	}

	res, err := h.productService.ListProducts(c.Context(), userID, *query)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetProducts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProducts)
}

func (h *productHandler) GetProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")

	res, err := h.productService.GetProduct(c.Context(), userID, productID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetProducts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProducts)
}

func (h *productHandler) CreateProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateProductRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddProduct, err)
	}

	res, err := h.productService.CreateProduct(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddProduct, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddProduct)
}

func (h *productHandler) UpdateProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")
	req := new(domain.UpdateProductRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateProduct, err)
	}

	res, err := h.productService.UpdateProduct(c.Context(), userID, productID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateProduct, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateProduct)
}

func (h *productHandler) DeleteProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")

	if err := h.productService.DeleteProduct(c.Context(), userID, productID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteProduct, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteProduct)
}

func (h *productHandler) DeleteProducts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.BulkDeleteProductsRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteProduct, err)
	}

	if err := h.productService.DeleteProducts(c.Context(), userID, *req); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteProduct, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteProducts)
}

func (h *productHandler) CreateBatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")
	req := new(domain.BatchRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddBatch, err)
	}

	res, err := h.productService.CreateBatch(c.Context(), userID, productID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddBatch, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddBatch)
}

func (h *productHandler) UpdateBatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")
	batchID := c.Params("batchId")
	req := new(domain.BatchRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateBatch, err)
	}

	res, err := h.productService.UpdateBatch(c.Context(), userID, productID, batchID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateBatch, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateBatch)
}

func (h *productHandler) DeleteBatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	productID := c.Params("id")
	batchID := c.Params("batchId")

	if err := h.productService.DeleteBatch(c.Context(), userID, productID, batchID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteBatch, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteBatch)
}

func (h *productHandler) GetDashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.productService.GetDashboard(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetDashboard, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDashboard)
}

func (h *productHandler) GetAlerts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.productService.GetAlerts(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetAlerts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAlerts)
}

func (h *productHandler) ExportInventory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.reportService.ExportInventory(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedExportInventory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessExportInventory)
}
