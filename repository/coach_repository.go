package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stackedwins/models"
)

// CoachRepository stores coach chat rows.
type CoachRepository interface {
	// Recent returns the newest n rows, oldest first.
	Recent(ctx context.Context, userID string, n int) ([]models.CoachChat, error)
	SaveExchange(ctx context.Context, rows []models.CoachChat) error
	// History returns up to limit rows, oldest first.
	History(ctx context.Context, userID string, limit int) ([]models.CoachChat, error)
}

type coachRepository struct {
	db *gorm.DB
}

func NewCoachRepository(db *gorm.DB) CoachRepository {
	return &coachRepository{db: db}
}

func (r *coachRepository) Recent(ctx context.Context, userID string, n int) ([]models.CoachChat, error) {
	var rows []models.CoachChat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent coach chats for userID %s: %w", userID, err)
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (r *coachRepository) SaveExchange(ctx context.Context, rows []models.CoachChat) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to store coach exchange: %w", err)
	}
	return nil
}

func (r *coachRepository) History(ctx context.Context, userID string, limit int) ([]models.CoachChat, error) {
	var rows []models.CoachChat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coach history for userID %s: %w", userID, err)
	}
	return rows, nil
}
