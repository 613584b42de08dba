package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stackedwins/models"
)

// CheckInRepository stores daily check-ins and the task completions made on
// them. A check-in is unique per (user, date); a completion per (task, check-in).
type CheckInRepository interface {
	GetByDate(ctx context.Context, userID string, date time.Time) (*models.DailyCheckIn, error)
	// Upsert writes the check-in for (UserID, Date), replacing the scores of
	// an existing row, and returns the stored row.
	Upsert(ctx context.Context, c *models.DailyCheckIn) (*models.DailyCheckIn, error)
	// GetOrCreate returns the check-in for the day, inserting defaults when
	// none exists. A concurrent insert by another request is reused.
	GetOrCreate(ctx context.Context, defaults *models.DailyCheckIn) (*models.DailyCheckIn, error)
	// CreateCompletion inserts the completion unless one exists for the same
	// task and check-in; created is false in that case.
	CreateCompletion(ctx context.Context, tc *models.TaskCompletion) (created bool, err error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.DailyCheckIn, error)
	// ListRecent returns the newest check-ins with completions and tasks.
	ListRecent(ctx context.Context, userID string, limit int) ([]models.DailyCheckIn, error)
	ListAll(ctx context.Context, userID string) ([]models.DailyCheckIn, error)
	// Tallies returns every check-in of the user with its completion count,
	// oldest first.
	Tallies(ctx context.Context, userID string) ([]models.CheckInTally, error)
	RecentCompletions(ctx context.Context, userID string, since time.Time, limit int) ([]models.TaskCompletion, error)
	UserIDs(ctx context.Context) ([]string, error)
}

type checkInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) GetByDate(ctx context.Context, userID string, date time.Time) (*models.DailyCheckIn, error) {
	var c models.DailyCheckIn
	err := r.db.WithContext(ctx).Preload("Completions").
		Where("user_id = ? AND date = ?", userID, date).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve check-in for userID %s on %s: %w", userID, date.Format(time.DateOnly), err)
	}
	return &c, nil
}

func (r *checkInRepository) Upsert(ctx context.Context, c *models.DailyCheckIn) (*models.DailyCheckIn, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"energy", "stress", "sleep_quality", "reflection", "updated_at"}),
	}).Omit("Completions").Create(c).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save check-in for userID %s: %w", c.UserID, err)
	}
	return r.mustGet(ctx, c.UserID, c.Date)
}

func (r *checkInRepository) GetOrCreate(ctx context.Context, defaults *models.DailyCheckIn) (*models.DailyCheckIn, error) {
	existing, err := r.GetByDate(ctx, defaults.UserID, defaults.Date)
	if err != nil || existing != nil {
		return existing, err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Omit("Completions").Create(defaults).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create check-in for userID %s: %w", defaults.UserID, err)
	}
	return r.mustGet(ctx, defaults.UserID, defaults.Date)
}

func (r *checkInRepository) mustGet(ctx context.Context, userID string, date time.Time) (*models.DailyCheckIn, error) {
	c, err := r.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("check-in for userID %s missing after write", userID)
	}
	return c, nil
}

func (r *checkInRepository) CreateCompletion(ctx context.Context, tc *models.TaskCompletion) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "check_in_id"}},
		DoNothing: true,
	}).Omit("Task").Create(tc)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record completion of task %s: %w", tc.TaskID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *checkInRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.DailyCheckIn, error) {
	var out []models.DailyCheckIn
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins for userID %s: %w", userID, err)
	}
	return out, nil
}

func (r *checkInRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.DailyCheckIn, error) {
	var out []models.DailyCheckIn
	err := r.db.WithContext(ctx).
		Preload("Completions.Task").
		Where("user_id = ?", userID).
		Order("date desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent check-ins for userID %s: %w", userID, err)
	}
	return out, nil
}

func (r *checkInRepository) ListAll(ctx context.Context, userID string) ([]models.DailyCheckIn, error) {
	var out []models.DailyCheckIn
	err := r.db.WithContext(ctx).
		Preload("Completions").
		Where("user_id = ?", userID).
		Order("date asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins for userID %s: %w", userID, err)
	}
	return out, nil
}

func (r *checkInRepository) Tallies(ctx context.Context, userID string) ([]models.CheckInTally, error) {
	var out []models.CheckInTally
	err := r.db.WithContext(ctx).
		Table("daily_check_ins").
		Select("daily_check_ins.id AS check_in_id, daily_check_ins.date AS date, COUNT(task_completions.id) AS completions").
		Joins("LEFT JOIN task_completions ON task_completions.check_in_id = daily_check_ins.id").
		Where("daily_check_ins.user_id = ?", userID).
		Group("daily_check_ins.id, daily_check_ins.date").
		Order("daily_check_ins.date asc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to tally check-ins for userID %s: %w", userID, err)
	}
	return out, nil
}

func (r *checkInRepository) RecentCompletions(ctx context.Context, userID string, since time.Time, limit int) ([]models.TaskCompletion, error) {
	var out []models.TaskCompletion
	err := r.db.WithContext(ctx).
		Preload("Task").
		Joins("JOIN daily_check_ins ON daily_check_ins.id = task_completions.check_in_id").
		Where("daily_check_ins.user_id = ? AND daily_check_ins.date >= ?", userID, since).
		Order("task_completions.completed_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent completions for userID %s: %w", userID, err)
	}
	return out, nil
}

func (r *checkInRepository) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.DailyCheckIn{}).Distinct().Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with check-ins: %w", err)
	}
	return ids, nil
}
