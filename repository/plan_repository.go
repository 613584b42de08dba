package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"stackedwins/models"
)

// PlanRepository stores growth plans with their milestones and tasks.
type PlanRepository interface {
	// ReplaceActivePlan deactivates every active plan of plan.UserID and
	// creates plan as the new active one, in a single transaction.
	ReplaceActivePlan(ctx context.Context, plan *models.GrowthPlan) error
	// GetActivePlan returns the active plan with milestones ordered by target
	// date and tasks by order, or (nil, nil) if the user has none.
	GetActivePlan(ctx context.Context, userID string) (*models.GrowthPlan, error)
	// GetActiveTask returns the task only if it belongs to userID's active plan.
	GetActiveTask(ctx context.Context, userID, taskID string) (*models.Task, error)
	// MilestoneOwnedBy reports whether the milestone belongs to any plan of userID.
	MilestoneOwnedBy(ctx context.Context, userID, milestoneID string) (bool, error)
	CountActivePlans(ctx context.Context, userID string) (int64, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) ReplaceActivePlan(ctx context.Context, plan *models.GrowthPlan) error {
	if plan == nil {
		return errors.New("plan cannot be nil")
	}
	plan.IsActive = true
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GrowthPlan{}).
			Where("user_id = ? AND is_active = ?", plan.UserID, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate plans: %w", err)
		}
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace active plan for userID %s: %w", plan.UserID, err)
	}
	return nil
}

func (r *planRepository) GetActivePlan(ctx context.Context, userID string) (*models.GrowthPlan, error) {
	var plan models.GrowthPlan
	err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("target_date asc") }).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order(`"order" asc`) }).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at desc").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve active plan for userID %s: %w", userID, err)
	}
	return &plan, nil
}

func (r *planRepository) GetActiveTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN growth_plans ON growth_plans.id = tasks.plan_id").
		Where("tasks.id = ? AND growth_plans.user_id = ? AND growth_plans.is_active = ?", taskID, userID, true).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve task %s for userID %s: %w", taskID, userID, err)
	}
	return &task, nil
}

func (r *planRepository) MilestoneOwnedBy(ctx context.Context, userID, milestoneID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Joins("JOIN growth_plans ON growth_plans.id = milestones.plan_id").
		Where("milestones.id = ? AND growth_plans.user_id = ?", milestoneID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check milestone %s for userID %s: %w", milestoneID, userID, err)
	}
	return count > 0, nil
}

func (r *planRepository) CountActivePlans(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GrowthPlan{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active plans for userID %s: %w", userID, err)
	}
	return count, nil
}
