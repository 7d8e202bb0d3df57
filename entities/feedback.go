package entities

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Email        *string    `json:"email"`
	Type         *string    `json:"type"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	UpvotesCount int        `gorm:"not null;default:0" json:"upvotes_count"`
	CreatedAt    time.Time  `gorm:"type:timestamp with time zone;autoCreateTime;index" json:"created_at"`
}

// FeedbackUpvote rows drive Feedback.UpvotesCount through a database
// trigger installed by the migrate command.
type FeedbackUpvote struct {
	FeedbackID uuid.UUID `gorm:"type:uuid;primaryKey" json:"feedback_id"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt  time.Time `gorm:"type:timestamp with time zone;autoCreateTime" json:"created_at"`

	Feedback *Feedback `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"-"`
}
