package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stackedwins/models"
)

type FeedbackRepository interface {
	Create(ctx context.Context, f *models.Feedback) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to store feedback for userID %s: %w", f.UserID, err)
	}
	return nil
}

func (r *feedbackRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Feedback, error) {
	var out []models.Feedback
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for userID %s: %w", userID, err)
	}
	return out, nil
}
