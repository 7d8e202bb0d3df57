package feedback

import (
	"context"

	"lifecycle/entities"

	"gorm.io/gorm"
)

type (
	FeedbackRepository interface {
		CreateFeedback(ctx context.Context, feedback *entities.Feedback) error
		GetFeedbackList(ctx context.Context) ([]*entities.Feedback, error)
		GetFeedbackByID(ctx context.Context, id string) (*entities.Feedback, error)
		GetUpvotedFeedbackIDs(ctx context.Context, userID string) ([]string, error)
		// AddUpvote returns gorm.ErrDuplicatedKey when the user already voted.
		AddUpvote(ctx context.Context, upvote *entities.FeedbackUpvote) error
		RemoveUpvote(ctx context.Context, feedbackID string, userID string) error
	}

	feedbackRepository struct {
		db *gorm.DB
	}
)

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) CreateFeedback(ctx context.Context, feedback *entities.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) GetFeedbackList(ctx context.Context) ([]*entities.Feedback, error) {
	var list []*entities.Feedback
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *feedbackRepository) GetFeedbackByID(ctx context.Context, id string) (*entities.Feedback, error) {
	var feedback entities.Feedback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) GetUpvotedFeedbackIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&entities.FeedbackUpvote{}).
		Where("user_id = ?", userID).
		Pluck("feedback_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *feedbackRepository) AddUpvote(ctx context.Context, upvote *entities.FeedbackUpvote) error {
	return r.db.WithContext(ctx).Omit("Feedback").Create(upvote).Error
}

func (r *feedbackRepository) RemoveUpvote(ctx context.Context, feedbackID string, userID string) error {
	return r.db.WithContext(ctx).
		Where("feedback_id = ? AND user_id = ?", feedbackID, userID).
		Delete(&entities.FeedbackUpvote{}).Error
}
