package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoachRole mirrors the chat completion roles stored for coach history.
type CoachRole string

const (
	CoachRoleUser      CoachRole = "user"
	CoachRoleAssistant CoachRole = "assistant"
)

// CoachChat is one side of a coach exchange. User rows carry Message,
// assistant rows carry Response.
type CoachChat struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(128);index;not null"`
	Role      CoachRole `json:"role" gorm:"type:varchar(16);not null"`
	Message   string    `json:"message" gorm:"type:text"`
	Response  string    `json:"response" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (CoachChat) TableName() string {
	return "coach_chats"
}

func (c *CoachChat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CoachConversation pairs a user message with the reply that followed it.
type CoachConversation struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Role      CoachRole `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
