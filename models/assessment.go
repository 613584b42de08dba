package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tone is the coaching voice a user asked for.
type Tone string

const (
	ToneSteady Tone = "steady"
	ToneFirm   Tone = "firm"
	ToneGentle Tone = "gentle"
)

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool {
	switch t {
	case ToneSteady, ToneFirm, ToneGentle:
		return true
	}
	return false
}

// Assessment is a user's self-reported starting point. There is exactly one
// row per user; re-submission overwrites it and moves CompletedAt forward.
type Assessment struct {
	ID               string                      `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID           string                      `json:"userId" gorm:"type:varchar(128);uniqueIndex;not null"`
	StressLevel      int                         `json:"stressLevel" gorm:"not null"`
	AnxietyLevel     int                         `json:"anxietyLevel" gorm:"not null"`
	MoodStability    int                         `json:"moodStability" gorm:"not null"`
	SleepQuality     int                         `json:"sleepQuality" gorm:"not null"`
	SleepHours       float64                     `json:"sleepHours" gorm:"not null"`
	WeekdayMinutes   int                         `json:"weekdayMinutes" gorm:"not null"`
	WeekendMinutes   int                         `json:"weekendMinutes" gorm:"not null"`
	Goals            datatypes.JSONSlice[string] `json:"goals"`
	Values           datatypes.JSONSlice[string] `json:"values" gorm:"column:user_values"`
	CurrentStruggles datatypes.JSONSlice[string] `json:"currentStruggles"`
	PreferredTone    Tone                        `json:"preferredTone" gorm:"type:varchar(16);not null"`
	CompletedAt      time.Time                   `json:"completedAt" gorm:"index;not null"`
	CreatedAt        time.Time                   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time                   `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
