package entities

type BarcodeCache struct {
	Barcode  string  `gorm:"primaryKey" json:"barcode"`
	Name     string  `gorm:"not null;default:''" json:"name"`
	Supplier *string `json:"supplier"`
	Category *string `json:"category"`

	Timestamp
}
