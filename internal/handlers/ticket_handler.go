package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/helpers"
	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

// Tournament window; ticket dates outside it are rejected.
var (
	tournamentStart = time.Date(2026, time.June, 11, 0, 0, 0, 0, time.UTC)
	tournamentEnd   = time.Date(2026, time.July, 19, 0, 0, 0, 0, time.UTC)
)

type TicketRequest struct {
	Name           string   `json:"name" binding:"required"`
	MatchNumber    string   `json:"match_number" binding:"required"`
	Date           string   `json:"date" binding:"required"`
	Venue          string   `json:"venue" binding:"required"`
	TicketCategory string   `json:"ticket_category" binding:"required"`
	Quantity       int      `json:"quantity" binding:"required,gt=0"`
	TicketInfo     string   `json:"ticket_info"`
	TicketPrice    *float64 `json:"ticket_price"`
}

// validateTicketRequest checks the parts binding tags cannot express: the
// match number must resolve to a schedule row and the date must be a valid
// day inside the tournament window.
func validateTicketRequest(gormDB *gorm.DB, req *TicketRequest) (time.Time, string, bool) {
	var match models.Match
	if err := gormDB.Where("match_number = ?", req.MatchNumber).First(&match).Error; err != nil {
		return time.Time{}, "Invalid match number. Please select a scheduled match.", false
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return time.Time{}, "Invalid date format. Use YYYY-MM-DD.", false
	}

	if date.Before(tournamentStart) || date.After(tournamentEnd) {
		return time.Time{}, "Date must fall within the FIFA 2026 World Cup period (June 11 - July 19, 2026).", false
	}

	if req.TicketPrice != nil && *req.TicketPrice < 0 {
		return time.Time{}, "Ticket price cannot be negative.", false
	}

	return date, "", true
}

func ListTickets(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var tickets []models.Ticket
	if err := gormDB.Preload("User").Order("date DESC").Find(&tickets).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	responses := make([]models.TicketResponse, 0, len(tickets))
	for i := range tickets {
		responses = append(responses, tickets[i].ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}

func CreateTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	date, message, ok := validateTicketRequest(gormDB, &req)
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, message)
		return
	}

	ticket := models.Ticket{
		UserID:         userID.(uint),
		Name:           req.Name,
		MatchNumber:    req.MatchNumber,
		Date:           date,
		Venue:          req.Venue,
		TicketCategory: req.TicketCategory,
		Quantity:       req.Quantity,
		TicketInfo:     req.TicketInfo,
		TicketPrice:    req.TicketPrice,
	}

	if err := gormDB.Create(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket.")
		return
	}

	if err := gormDB.Preload("User").First(&ticket, ticket.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load created ticket.")
		return
	}

	c.JSON(http.StatusCreated, ticket.ToResponse())
}

func UpdateTicket(c *gin.Context) {
	ticketID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket id.")
		return
	}

	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	// Ownership and existence are deliberately conflated: someone else's
	// ticket id looks identical to a missing one.
	var ticket models.Ticket
	if err := gormDB.Where("id = ? AND user_id = ?", ticketID, userID).First(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	date, message, ok := validateTicketRequest(gormDB, &req)
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, message)
		return
	}

	ticket.Name = req.Name
	ticket.MatchNumber = req.MatchNumber
	ticket.Date = date
	ticket.Venue = req.Venue
	ticket.TicketCategory = req.TicketCategory
	ticket.Quantity = req.Quantity
	ticket.TicketInfo = req.TicketInfo
	ticket.TicketPrice = req.TicketPrice

	if err := gormDB.Save(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update ticket.")
		return
	}

	if err := gormDB.Preload("User").First(&ticket, ticket.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load updated ticket.")
		return
	}

	c.JSON(http.StatusOK, ticket.ToResponse())
}

func DeleteTicket(c *gin.Context) {
	ticketID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket id.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticket models.Ticket
	if err := gormDB.Where("id = ? AND user_id = ?", ticketID, userID).First(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	if err := gormDB.Delete(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully."})
}

func generateQRCodeData(ticket *models.Ticket) string {
	signature := generateTicketSignature(ticket, os.Getenv("JWT_SECRET"))
	return fmt.Sprintf("ticket:%d;match:%s;user:%d;signature:%s",
		ticket.ID, ticket.MatchNumber, ticket.UserID, signature)
}

func generateTicketSignature(ticket *models.Ticket, secretKey string) string {
	data := fmt.Sprintf("%d:%s:%d", ticket.ID, ticket.MatchNumber, ticket.UserID)
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateTicketQR renders an owned ticket's signed entry payload as a PNG
// QR image for match-day display.
func GenerateTicketQR(c *gin.Context) {
	ticketID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket id.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticket models.Ticket
	if err := gormDB.Where("id = ? AND user_id = ?", ticketID, userID).First(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	qrImage, err := qrcode.Encode(generateQRCodeData(&ticket), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
