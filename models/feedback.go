package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackType string

const (
	FeedbackBug         FeedbackType = "bug"
	FeedbackFeature     FeedbackType = "feature"
	FeedbackImprovement FeedbackType = "improvement"
	FeedbackGeneral     FeedbackType = "general"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackBug, FeedbackFeature, FeedbackImprovement, FeedbackGeneral:
		return true
	}
	return false
}

const FeedbackStatusNew = "new"

type Feedback struct {
	ID        string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string       `json:"userId" gorm:"type:varchar(128);index;not null"`
	Type      FeedbackType `json:"type" gorm:"type:varchar(16);not null"`
	Title     *string      `json:"title"`
	Message   string       `json:"message" gorm:"type:text;not null"`
	Rating    *int         `json:"rating"`
	Status    string       `json:"status" gorm:"type:varchar(16);not null;default:'new'"`
	CreatedAt time.Time    `json:"createdAt" gorm:"autoCreateTime;index"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
