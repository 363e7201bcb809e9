package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/assistant"
	"github.com/vulkenree/fifa-tickets-app/internal/helpers"
	"github.com/vulkenree/fifa-tickets-app/internal/middleware"
	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID *uint  `json:"conversation_id"`
}

type SaveConversationRequest struct {
	IsSaved *bool `json:"is_saved" binding:"required"`
}

func Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Message must not be empty.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service := middleware.GetAssistant(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Assistant not available.")
		return
	}

	result, err := service.ProcessMessage(c.Request.Context(), userID.(uint), req.Message, req.ConversationID)
	if err != nil {
		if errors.Is(err, assistant.ErrConversationNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Conversation not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process message.")
		return
	}

	c.JSON(http.StatusOK, result)
}

func ListConversations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service := middleware.GetAssistant(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Assistant not available.")
		return
	}

	conversations, err := service.Store().ListByOwner(userID.(uint))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving conversations.")
		return
	}

	responses := make([]models.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		responses = append(responses, conversations[i].ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}

func GetConversation(c *gin.Context) {
	conversationID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid conversation id.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service := middleware.GetAssistant(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Assistant not available.")
		return
	}

	conversation, err := service.Store().FetchWithMessages(conversationID, userID.(uint))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Conversation not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving conversation.")
		return
	}

	messages := make([]models.MessageResponse, 0, len(conversation.Messages))
	for i := range conversation.Messages {
		messages = append(messages, conversation.Messages[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conversation.ToResponse(),
		"messages":     messages,
	})
}

func SaveConversation(c *gin.Context) {
	conversationID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid conversation id.")
		return
	}

	var req SaveConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service := middleware.GetAssistant(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Assistant not available.")
		return
	}

	if err := service.Store().SetSaved(conversationID, userID.(uint), *req.IsSaved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Conversation not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update conversation.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation updated successfully."})
}

func DeleteConversation(c *gin.Context) {
	conversationID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid conversation id.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service := middleware.GetAssistant(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Assistant not available.")
		return
	}

	if err := service.Store().DeleteConversation(conversationID, userID.(uint)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Conversation not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete conversation.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully."})
}
