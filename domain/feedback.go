package domain

import (
	"errors"
	"time"
)

const FeedbackMessageMaxLength = 2000

var (
	MessageSuccessSubmitFeedback = "Thanks for your feedback!"
	MessageSuccessGetFeedback    = "feedback retrieved successfully"
	MessageSuccessAddUpvote      = "upvote added"
	MessageSuccessRemoveUpvote   = "upvote removed"

	MessageFailedSubmitFeedback = "Failed to send feedback"
	MessageFailedGetFeedback    = "Failed to load"
	MessageFailedUpvote         = "Failed to update vote"

	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrAlreadyUpvoted   = errors.New("you have already upvoted this feedback")
)

type (
	SubmitFeedbackRequest struct {
		Type    string `json:"type" validate:"omitempty,max=50"`
		Message string `json:"message"`
		Email   string `json:"email" validate:"omitempty,email"`
	}

	FeedbackResponse struct {
		ID           string    `json:"id"`
		UserID       *string   `json:"user_id"`
		Email        *string   `json:"email"`
		Type         *string   `json:"type"`
		Message      string    `json:"message"`
		UpvotesCount int       `json:"upvotes_count"`
		Upvoted      bool      `json:"upvoted"`
		CreatedAt    time.Time `json:"created_at"`
	}
)
