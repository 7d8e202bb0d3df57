package domain

var (
	MessageSuccessLookupBarcode = "barcode looked up successfully"
	MessageFailedLookupBarcode  = "failed to look up barcode"
)

// BarcodeResult fields are nil when the catalog does not know them.
type BarcodeResult struct {
	Barcode  string  `json:"barcode"`
	Name     *string `json:"name"`
	Supplier *string `json:"supplier"`
	Category *string `json:"category"`
	Cached   bool    `json:"cached"`
}
