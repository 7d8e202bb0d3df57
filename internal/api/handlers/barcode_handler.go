package handlers

import (
	"lifecycle/domain"
	"lifecycle/internal/api/presenters"
	"lifecycle/pkg/barcode"

	"github.com/gofiber/fiber/v2"
)

type (
	BarcodeHandler interface {
		Lookup(c *fiber.Ctx) error
	}

	barcodeHandler struct {
		barcodeService barcode.BarcodeService
	}
)

func NewBarcodeHandler(barcodeService barcode.BarcodeService) BarcodeHandler {
	return &barcodeHandler{barcodeService: barcodeService}
}

// Lookup always answers 200; unknown codes come back with empty fields so
// the client can fall back to manual entry.
func (h *barcodeHandler) Lookup(c *fiber.Ctx) error {
	res := h.barcodeService.Lookup(c.Context(), c.Params("code"))
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLookupBarcode)
}
