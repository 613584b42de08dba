package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intensity is the overall load of a plan.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityStandard Intensity = "standard"
	IntensityHigh     Intensity = "high"
)

func (i Intensity) Valid() bool {
	switch i {
	case IntensityLow, IntensityStandard, IntensityHigh:
		return true
	}
	return false
}

// TaskCategory groups daily tasks by the area of life they serve.
type TaskCategory string

const (
	CategoryMental   TaskCategory = "mental"
	CategoryPhysical TaskCategory = "physical"
	CategoryPurpose  TaskCategory = "purpose"
	CategoryRoutine  TaskCategory = "routine"
)

func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryMental, CategoryPhysical, CategoryPurpose, CategoryRoutine:
		return true
	}
	return false
}

// GrowthPlan is a generated plan. A user has at most one active plan; older
// plans are deactivated on regeneration and kept for history.
type GrowthPlan struct {
	ID          string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string      `json:"userId" gorm:"type:varchar(128);index:idx_plan_user_active;not null"`
	Vision      string      `json:"vision" gorm:"type:text"`
	Intensity   Intensity   `json:"intensity" gorm:"type:varchar(16);not null"`
	WeeklyFocus string      `json:"weeklyFocus" gorm:"type:text"`
	IsActive    bool        `json:"isActive" gorm:"index:idx_plan_user_active;not null;default:false"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
	Milestones  []Milestone `json:"milestones" gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Tasks       []Task      `json:"tasks" gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (GrowthPlan) TableName() string {
	return "growth_plans"
}

func (p *GrowthPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Milestone is a 30/60/90 day checkpoint within a plan.
type Milestone struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	PlanID      string     `json:"planId" gorm:"type:varchar(36);index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	TargetDate  time.Time  `json:"targetDate"`
	Progress    int        `json:"progress" gorm:"not null;default:0"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}

func (Milestone) TableName() string {
	return "milestones"
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Task is one small daily action in a plan. Order is the position the
// generator returned it in.
type Task struct {
	ID               string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	PlanID           string       `json:"planId" gorm:"type:varchar(36);index;not null"`
	Title            string       `json:"title" gorm:"not null"`
	Description      string       `json:"description" gorm:"type:text"`
	EstimatedMinutes int          `json:"estimatedMinutes" gorm:"not null"`
	IsAnchorWin      bool         `json:"isAnchorWin" gorm:"not null;default:false"`
	Category         TaskCategory `json:"category" gorm:"type:varchar(16);not null"`
	Order            int          `json:"order" gorm:"not null;default:0"`
	CreatedAt        time.Time    `json:"createdAt" gorm:"autoCreateTime"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TodayTask is a plan task annotated with whether it was completed today.
type TodayTask struct {
	Task
	Completed bool `json:"completed"`
}
