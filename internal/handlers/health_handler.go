package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const serviceName = "FIFA 2026 Ticket App"

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   serviceName + " is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func Health(c *gin.Context) {
	databaseStatus := "connected"
	status := http.StatusOK
	overall := "healthy"

	if db, exists := c.Get("db"); exists {
		gormDB := db.(*gorm.DB)
		if err := gormDB.Exec("SELECT 1").Error; err != nil {
			databaseStatus = "error: " + err.Error()
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
	} else {
		databaseStatus = "not configured"
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"service":   serviceName,
		"database":  databaseStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
