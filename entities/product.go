package entities

import (
	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"index" json:"category"`
	Supplier  *string   `json:"supplier"`
	Location  *string   `json:"location"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	Barcode   *string   `gorm:"index" json:"barcode"`
	AddedDate string    `gorm:"type:varchar(10);not null" json:"added_date"`

	User    *User           `gorm:"foreignKey:UserID" json:"-"`
	Batches []*ProductBatch `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product_batches"`
	Timestamp
}

// ProductBatch dates are stored as yyyy-mm-dd text so that string order
// matches calendar order.
type ProductBatch struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	BatchNumber *string   `json:"batch_number"`
	ExpiryDate  string    `gorm:"type:varchar(10);index;not null" json:"expiry_date"`
	Quantity    *int      `json:"quantity"`
	AddedDate   string    `gorm:"type:varchar(10);not null" json:"added_date"`

	Timestamp
}
