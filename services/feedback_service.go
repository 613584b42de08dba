package services

import (
	"context"
	"fmt"
	"strings"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	DefaultFeedbackLimit = 20

	msgFeedbackType     = "Type must be one of: bug, feature, improvement, general"
	msgFeedbackMessage  = "Feedback message is required"
	msgFeedbackRating   = "Rating must be between 1 and 5"
	msgFeedbackThankYou = "Thank you for your feedback! We appreciate your input."
)

type FeedbackInput struct {
	Type    string  `json:"type"`
	Title   *string `json:"title"`
	Message string  `json:"message"`
	Rating  *int    `json:"rating"`
}

// FeedbackReceipt is the stored feedback. Its message field is replaced by
// the acknowledgement shown to the user.
type FeedbackReceipt struct {
	*models.Feedback
	Message string `json:"message"`
}

type FeedbackService interface {
	Submit(ctx context.Context, userID string, in FeedbackInput) (*FeedbackReceipt, error)
	List(ctx context.Context, userID string, limit int) ([]models.Feedback, error)
}

type feedbackService struct {
	repo repository.FeedbackRepository
	log  *logger.Logger
}

func NewFeedbackService(repo repository.FeedbackRepository, log *logger.Logger) FeedbackService {
	return &feedbackService{repo: repo, log: orNop(log)}
}

func (s *feedbackService) Submit(ctx context.Context, userID string, in FeedbackInput) (*FeedbackReceipt, error) {
	if !models.FeedbackType(in.Type).Valid() {
		return nil, apperr.Validation(msgFeedbackType)
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apperr.Validation(msgFeedbackMessage)
	}
	if in.Rating != nil && !inRange(*in.Rating, 1, 5) {
		return nil, apperr.Validation(msgFeedbackRating)
	}

	fb := &models.Feedback{
		UserID:  userID,
		Type:    models.FeedbackType(in.Type),
		Title:   optional(in.Title),
		Message: message,
		Rating:  in.Rating,
		Status:  models.FeedbackStatusNew,
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	scoped(ctx, s.log, "FeedbackService").Info("Feedback submitted", "user_id", userID, "feedback_id", fb.ID, "type", fb.Type)
	return &FeedbackReceipt{Feedback: fb, Message: msgFeedbackThankYou}, nil
}

func (s *feedbackService) List(ctx context.Context, userID string, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
