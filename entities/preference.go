package entities

import (
	"github.com/google/uuid"
)

type Preference struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Key    string    `gorm:"primaryKey" json:"key"`
	Value  string    `gorm:"type:text" json:"value"`

	Timestamp
}
