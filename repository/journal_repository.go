package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"stackedwins/models"
)

type JournalRepository interface {
	Create(ctx context.Context, e *models.JournalEntry) error
	// Get returns the entry only when it belongs to userID; (nil, nil) otherwise.
	Get(ctx context.Context, userID, id string) (*models.JournalEntry, error)
	List(ctx context.Context, f models.JournalFilter) ([]models.JournalEntry, int64, error)
	Save(ctx context.Context, e *models.JournalEntry) error
	Delete(ctx context.Context, userID, id string) error
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(ctx context.Context, e *models.JournalEntry) error {
	if err := r.db.WithContext(ctx).Omit("Milestone").Create(e).Error; err != nil {
		return fmt.Errorf("failed to create journal entry for userID %s: %w", e.UserID, err)
	}
	return nil
}

func (r *journalRepository) Get(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := r.db.WithContext(ctx).Preload("Milestone").
		Where("id = ? AND user_id = ?", id, userID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch journal entry %s: %w", id, err)
	}
	return &e, nil
}

func (r *journalRepository) List(ctx context.Context, f models.JournalFilter) ([]models.JournalEntry, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.JournalEntry{}).Where("user_id = ?", f.UserID)
		if f.Mood != "" {
			q = q.Where("mood = ?", f.Mood)
		}
		if f.MilestoneID != "" {
			q = q.Where("milestone_id = ?", f.MilestoneID)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count journal entries for userID %s: %w", f.UserID, err)
	}
	var entries []models.JournalEntry
	err := filtered().Preload("Milestone").
		Order("created_at desc").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list journal entries for userID %s: %w", f.UserID, err)
	}
	return entries, total, nil
}

func (r *journalRepository) Save(ctx context.Context, e *models.JournalEntry) error {
	if err := r.db.WithContext(ctx).Omit("Milestone").Save(e).Error; err != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", e.ID, err)
	}
	return nil
}

func (r *journalRepository) Delete(ctx context.Context, userID, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.JournalEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete journal entry %s: %w", id, err)
	}
	return nil
}
