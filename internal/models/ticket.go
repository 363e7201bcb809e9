package models

import (
	"time"
)

type Ticket struct {
	ID             uint   `gorm:"primarykey"`
	UserID         uint   `gorm:"not null;index"`
	User           User
	Name           string    `gorm:"size:100;not null"`
	MatchNumber    string    `gorm:"size:20;not null"`
	Date           time.Time `gorm:"not null"`
	Venue          string    `gorm:"size:100;not null"`
	TicketCategory string    `gorm:"size:50;not null"`
	Quantity       int       `gorm:"not null"`
	TicketInfo     string    `gorm:"type:text"`
	TicketPrice    *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type TicketResponse struct {
	ID             uint     `json:"id"`
	UserID         uint     `json:"user_id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	MatchNumber    string   `json:"match_number"`
	Date           string   `json:"date"`
	Venue          string   `json:"venue"`
	TicketCategory string   `json:"ticket_category"`
	Quantity       int      `json:"quantity"`
	TicketInfo     string   `json:"ticket_info"`
	TicketPrice    *float64 `json:"ticket_price"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// ToResponse flattens the ticket with its owner's username. The User
// association must be preloaded; a zero User yields an empty username.
func (t *Ticket) ToResponse() TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		Username:       t.User.Username,
		Name:           t.Name,
		MatchNumber:    t.MatchNumber,
		Date:           t.Date.Format("2006-01-02"),
		Venue:          t.Venue,
		TicketCategory: t.TicketCategory,
		Quantity:       t.Quantity,
		TicketInfo:     t.TicketInfo,
		TicketPrice:    t.TicketPrice,
		CreatedAt:      t.CreatedAt.Format("2006-01-02 15:04"),
		UpdatedAt:      t.UpdatedAt.Format("2006-01-02 15:04"),
	}
}
