package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyCheckIn is keyed on (UserID, Date); Date is midnight of the local day.
type DailyCheckIn struct {
	ID           string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string           `json:"userId" gorm:"type:varchar(128);uniqueIndex:idx_checkin_user_date;not null"`
	Date         time.Time        `json:"date" gorm:"uniqueIndex:idx_checkin_user_date;not null"`
	Energy       int              `json:"energy" gorm:"not null"`
	Stress       int              `json:"stress" gorm:"not null"`
	SleepQuality *int             `json:"sleepQuality"`
	Reflection   *string          `json:"reflection" gorm:"type:text"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updatedAt" gorm:"autoUpdateTime"`
	Completions  []TaskCompletion `json:"completions,omitempty" gorm:"foreignKey:CheckInID;constraint:OnDelete:CASCADE;"`
}

func (DailyCheckIn) TableName() string {
	return "daily_check_ins"
}

func (c *DailyCheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TaskCompletion records that a task was done on the day of a check-in.
type TaskCompletion struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	TaskID      string    `json:"taskId" gorm:"type:varchar(36);uniqueIndex:idx_completion_task_checkin;not null"`
	CheckInID   string    `json:"checkInId" gorm:"type:varchar(36);uniqueIndex:idx_completion_task_checkin;index;not null"`
	CompletedAt time.Time `json:"completedAt" gorm:"not null"`
	Task        *Task     `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}

func (TaskCompletion) TableName() string {
	return "task_completions"
}

func (tc *TaskCompletion) BeforeCreate(tx *gorm.DB) error {
	if tc.ID == "" {
		tc.ID = uuid.NewString()
	}
	return nil
}

// CheckInTally is one check-in reduced to what the metrics engine needs.
type CheckInTally struct {
	CheckInID   string
	Date        time.Time
	Completions int
}

// HasWins reports whether at least one task was completed on the check-in.
func (t CheckInTally) HasWins() bool {
	return t.Completions > 0
}
