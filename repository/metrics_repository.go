package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stackedwins/models"
)

// MetricsRepository stores the per-user ProgressMetrics rollup.
type MetricsRepository interface {
	// Get returns (nil, nil) when metrics were never computed for the user.
	Get(ctx context.Context, userID string) (*models.ProgressMetrics, error)
	Upsert(ctx context.Context, m *models.ProgressMetrics) error
}

type metricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) Get(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	var m models.ProgressMetrics
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch metrics for userID %s: %w", userID, err)
	}
	return &m, nil
}

func (r *metricsRepository) Upsert(ctx context.Context, m *models.ProgressMetrics) error {
	if m == nil || m.UserID == "" {
		return errors.New("metrics with a user ID are required")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"wins_stacked", "consistency_rate", "baseline_streak", "recovery_strength", "last_updated",
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert metrics for userID %s: %w", m.UserID, err)
	}
	return nil
}
