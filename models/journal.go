package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Mood string

const (
	MoodGrateful   Mood = "grateful"
	MoodReflective Mood = "reflective"
	MoodMotivated  Mood = "motivated"
	MoodChallenged Mood = "challenged"
	MoodProud      Mood = "proud"
	MoodNeutral    Mood = "neutral"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodGrateful, MoodReflective, MoodMotivated, MoodChallenged, MoodProud, MoodNeutral:
		return true
	}
	return false
}

type JournalEntry struct {
	ID          string                      `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string                      `json:"userId" gorm:"type:varchar(128);index;not null"`
	Title       *string                     `json:"title"`
	Content     string                      `json:"content" gorm:"type:text;not null"`
	Mood        *Mood                       `json:"mood" gorm:"type:varchar(16);index"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	MilestoneID *string                     `json:"milestoneId" gorm:"type:varchar(36);index"`
	Milestone   *Milestone                  `json:"milestone,omitempty" gorm:"foreignKey:MilestoneID;constraint:OnDelete:SET NULL;"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time                   `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

func (j *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// JournalFilter narrows a journal listing.
type JournalFilter struct {
	UserID      string
	Mood        string
	MilestoneID string
	Limit       int
	Offset      int
}
