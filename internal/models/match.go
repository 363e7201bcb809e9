package models

import (
	"time"
)

// Match is a row of the FIFA 2026 schedule lookup table. Reference data,
// loaded from the fixture CSV at startup and never user-owned.
type Match struct {
	ID          uint      `gorm:"primarykey"`
	MatchNumber string    `gorm:"size:10;uniqueIndex;not null"`
	Date        time.Time `gorm:"not null"`
	Venue       string    `gorm:"size:100;not null"`
}

type MatchResponse struct {
	MatchNumber string `json:"match_number"`
	Date        string `json:"date"`
	Venue       string `json:"venue"`
}

func (m *Match) ToResponse() MatchResponse {
	return MatchResponse{
		MatchNumber: m.MatchNumber,
		Date:        m.Date.Format("2006-01-02"),
		Venue:       m.Venue,
	}
}
