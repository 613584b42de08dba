package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stackedwins/models"
)

// AssessmentRepository stores the single assessment row each user owns.
// Lookups return (nil, nil) when the user has no assessment.
type AssessmentRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Assessment, error)
	// EarliestByCompletedAt is the baseline reference: the user's assessment
	// with the oldest completion time.
	EarliestByCompletedAt(ctx context.Context, userID string) (*models.Assessment, error)
	// LatestByCompletedAt drives reassessment reminders.
	LatestByCompletedAt(ctx context.Context, userID string) (*models.Assessment, error)
	// Upsert inserts the assessment or overwrites the user's existing row in
	// place, returning the stored row.
	Upsert(ctx context.Context, a *models.Assessment) (*models.Assessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) GetByUserID(ctx context.Context, userID string) (*models.Assessment, error) {
	return r.first(ctx, userID, "")
}

func (r *assessmentRepository) EarliestByCompletedAt(ctx context.Context, userID string) (*models.Assessment, error) {
	return r.first(ctx, userID, "completed_at asc")
}

func (r *assessmentRepository) LatestByCompletedAt(ctx context.Context, userID string) (*models.Assessment, error) {
	return r.first(ctx, userID, "completed_at desc")
}

func (r *assessmentRepository) first(ctx context.Context, userID, order string) (*models.Assessment, error) {
	var a models.Assessment
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve assessment for userID %s: %w", userID, err)
	}
	return &a, nil
}

func (r *assessmentRepository) Upsert(ctx context.Context, a *models.Assessment) (*models.Assessment, error) {
	if a == nil || a.UserID == "" {
		return nil, errors.New("assessment with a user ID is required")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stress_level", "anxiety_level", "mood_stability", "sleep_quality", "sleep_hours",
			"weekday_minutes", "weekend_minutes", "goals", "user_values", "current_struggles",
			"preferred_tone", "completed_at", "updated_at",
		}),
	}).Create(a).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save assessment for userID %s: %w", a.UserID, err)
	}
	// On conflict the generated ID on a is not the stored one; re-read.
	stored, err := r.GetByUserID(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("assessment for userID %s missing after save", a.UserID)
	}
	return stored, nil
}
