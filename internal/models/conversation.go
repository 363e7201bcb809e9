package models

import (
	"time"
)

type Conversation struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	Title     string `gorm:"size:200"`
	IsSaved   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message `gorm:"constraint:OnDelete:CASCADE"`
}

type ConversationResponse struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	IsSaved      bool   `json:"is_saved"`
	MessageCount int    `json:"message_count"`
}

func (cv *Conversation) ToResponse() ConversationResponse {
	return ConversationResponse{
		ID:           cv.ID,
		UserID:       cv.UserID,
		Title:        cv.Title,
		CreatedAt:    cv.CreatedAt.Format("2006-01-02 15:04"),
		UpdatedAt:    cv.UpdatedAt.Format("2006-01-02 15:04"),
		IsSaved:      cv.IsSaved,
		MessageCount: len(cv.Messages),
	}
}
