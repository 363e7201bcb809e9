package models

import (
	"time"
)

// QueryLog records every generated SQL statement and its outcome for audit.
// Append-only; the application never reads it back.
type QueryLog struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	Question  string `gorm:"type:text;not null"`
	Query     string `gorm:"type:text;not null"`
	RowCount  int    `gorm:"not null;default:0"`
	Error     string `gorm:"type:text"`
	CreatedAt time.Time
}
