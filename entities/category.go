package entities

import (
	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}
