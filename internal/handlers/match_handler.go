package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/helpers"
	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

func ListMatches(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var matches []models.Match
	if err := gormDB.Find(&matches).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving matches.")
		return
	}

	// Sort by the numeric part of the match number so M2 precedes M10.
	sort.Slice(matches, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(matches[i].MatchNumber, "M"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(matches[j].MatchNumber, "M"))
		return ni < nj
	})

	responses := make([]models.MatchResponse, 0, len(matches))
	for i := range matches {
		responses = append(responses, matches[i].ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}

func GetMatch(c *gin.Context) {
	matchNumber := c.Param("number")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var match models.Match
	if err := gormDB.Where("match_number = ?", matchNumber).First(&match).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Match not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving match.")
		return
	}

	c.JSON(http.StatusOK, match.ToResponse())
}
