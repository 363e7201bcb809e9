package models

import (
	"time"
)

type User struct {
	ID           uint    `gorm:"primarykey"`
	Username     string  `gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	FavoriteTeam *string `gorm:"size:100"`
	CreatedAt    time.Time

	Tickets       []Ticket       `gorm:"constraint:OnDelete:CASCADE"`
	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE"`
}
