package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Append-only.
type Message struct {
	ID             uint   `gorm:"primarykey"`
	ConversationID uint   `gorm:"not null;index"`
	Role           string `gorm:"size:20;not null"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

type MessageResponse struct {
	ID             uint   `json:"id"`
	ConversationID uint   `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
