// Package feedback handles user feedback submissions and community upvotes.
// upvotes_count is maintained by a database trigger on feedback_upvotes;
// this package only writes vote rows.
package feedback

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	FeedbackService interface {
		SubmitFeedback(ctx context.Context, userID string, req domain.SubmitFeedbackRequest) (domain.FeedbackResponse, error)
		GetFeedbackList(ctx context.Context, userID string) ([]domain.FeedbackResponse, error)
		GetMyUpvotes(ctx context.Context, userID string) ([]string, error)
		AddUpvote(ctx context.Context, userID string, feedbackID string) error
		RemoveUpvote(ctx context.Context, userID string, feedbackID string) error
	}

	feedbackService struct {
		feedbackRepository FeedbackRepository
	}
)

func NewFeedbackService(feedbackRepository FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepository: feedbackRepository}
}

func (s *feedbackService) SubmitFeedback(ctx context.Context, userID string, req domain.SubmitFeedbackRequest) (domain.FeedbackResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return domain.FeedbackResponse{}, domain.NewValidationError("Please enter your feedback.")
	}
	if utf8.RuneCountInString(message) > domain.FeedbackMessageMaxLength {
		return domain.FeedbackResponse{}, domain.NewValidationError("Feedback must be under %d characters.", domain.FeedbackMessageMaxLength)
	}

	feedback := &entities.Feedback{
		ID:      uuid.New(),
		Email:   optional(req.Email),
		Type:    optional(req.Type),
		Message: message,
	}
	if userID != "" {
		userUUID, err := uuid.Parse(userID)
		if err != nil {
			return domain.FeedbackResponse{}, domain.ErrParseUUID
		}
		feedback.UserID = &userUUID
	}

	if err := s.feedbackRepository.CreateFeedback(ctx, feedback); err != nil {
		return domain.FeedbackResponse{}, err
	}
	return toResponse(feedback, false), nil
}

// GetFeedbackList returns every submission, newest first, flagging the ones
// userID has upvoted.
func (s *feedbackService) GetFeedbackList(ctx context.Context, userID string) ([]domain.FeedbackResponse, error) {
	list, err := s.feedbackRepository.GetFeedbackList(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.feedbackRepository.GetUpvotedFeedbackIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	voted := make(map[string]bool, len(ids))
	for _, id := range ids {
		voted[id] = true
	}

	res := make([]domain.FeedbackResponse, 0, len(list))
	for _, f := range list {
		res = append(res, toResponse(f, voted[f.ID.String()]))
	}
	return res, nil
}

func (s *feedbackService) GetMyUpvotes(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.feedbackRepository.GetUpvotedFeedbackIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *feedbackService) AddUpvote(ctx context.Context, userID string, feedbackID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	feedbackUUID, err := uuid.Parse(feedbackID)
	if err != nil {
		return domain.ErrFeedbackNotFound
	}
	if _, err := s.feedbackRepository.GetFeedbackByID(ctx, feedbackID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrFeedbackNotFound
		}
		return err
	}

	err = s.feedbackRepository.AddUpvote(ctx, &entities.FeedbackUpvote{
		FeedbackID: feedbackUUID,
		UserID:     userUUID,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyUpvoted
	}
	return err
}

// RemoveUpvote withdraws the user's vote. Removing a vote that does not
// exist is not an error.
func (s *feedbackService) RemoveUpvote(ctx context.Context, userID string, feedbackID string) error {
	if _, err := uuid.Parse(feedbackID); err != nil {
		return domain.ErrFeedbackNotFound
	}
	return s.feedbackRepository.RemoveUpvote(ctx, feedbackID, userID)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toResponse(f *entities.Feedback, upvoted bool) domain.FeedbackResponse {
	res := domain.FeedbackResponse{
		ID:           f.ID.String(),
		Email:        f.Email,
		Type:         f.Type,
		Message:      f.Message,
		UpvotesCount: f.UpvotesCount,
		Upvoted:      upvoted,
		CreatedAt:    f.CreatedAt,
	}
	if f.UserID != nil {
		id := f.UserID.String()
		res.UserID = &id
	}
	return res
}
