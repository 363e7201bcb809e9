package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/assistant"
	"github.com/vulkenree/fifa-tickets-app/internal/llm"
	"github.com/vulkenree/fifa-tickets-app/internal/middleware"
	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

func chatRoutes(t *testing.T, db *gorm.DB, userID uint, reply string) *gin.Engine {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, reply)
	}))
	t.Cleanup(srv.Close)

	client := llm.NewClientWithBaseURL("test-key", "gpt-4o-mini", srv.URL)
	service, err := assistant.NewService(db, client)
	require.NoError(t, err)

	router := newRouter(db, middleware.AssistantMiddleware(service), authAs(userID))
	router.POST("/v1/chat", Chat)
	router.GET("/v1/conversations", ListConversations)
	router.GET("/v1/conversations/:id", GetConversation)
	router.PUT("/v1/conversations/:id/save", SaveConversation)
	router.DELETE("/v1/conversations/:id", DeleteConversation)
	return router
}

func TestChat(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice", "secret123")
	router := chatRoutes(t, db, user.ID, "There are 104 matches.")

	t.Run("new conversation turn", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/chat", map[string]interface{}{
			"message": "How many matches are there?",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp assistant.TurnResult
		decodeBody(t, w, &resp)
		assert.Equal(t, "There are 104 matches.", resp.Response)
		assert.NotZero(t, resp.ConversationID)
		assert.False(t, resp.Error)
	})

	t.Run("blank message is a bad request", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/chat", map[string]interface{}{
			"message": "   ",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown conversation id is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/chat", map[string]interface{}{
			"message":         "hello again",
			"conversation_id": 9999,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestConversationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", "secret123")
	bob := createUser(t, db, "bob", "secret123")

	aliceRouter := chatRoutes(t, db, alice.ID, "hello alice")
	bobRouter := chatRoutes(t, db, bob.ID, "hello bob")

	w := doJSON(t, aliceRouter, http.MethodPost, "/v1/chat", map[string]interface{}{
		"message": "What venues host matches?",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var turn assistant.TurnResult
	decodeBody(t, w, &turn)

	t.Run("list shows the conversation with its message count", func(t *testing.T) {
		w := doJSON(t, aliceRouter, http.MethodGet, "/v1/conversations", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list []models.ConversationResponse
		decodeBody(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "What venues host matches?", list[0].Title)
		assert.Equal(t, 2, list[0].MessageCount)
	})

	t.Run("fetch returns messages in order", func(t *testing.T) {
		w := doJSON(t, aliceRouter, http.MethodGet, fmt.Sprintf("/v1/conversations/%d", turn.ConversationID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Conversation models.ConversationResponse `json:"conversation"`
			Messages     []models.MessageResponse    `json:"messages"`
		}
		decodeBody(t, w, &resp)
		require.Len(t, resp.Messages, 2)
		assert.Equal(t, models.RoleUser, resp.Messages[0].Role)
		assert.Equal(t, models.RoleAssistant, resp.Messages[1].Role)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		w := doJSON(t, bobRouter, http.MethodGet, fmt.Sprintf("/v1/conversations/%d", turn.ConversationID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, bobRouter, http.MethodDelete, fmt.Sprintf("/v1/conversations/%d", turn.ConversationID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, bobRouter, http.MethodGet, "/v1/conversations", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []models.ConversationResponse
		decodeBody(t, w, &list)
		assert.Empty(t, list)
	})

	t.Run("save toggles the flag", func(t *testing.T) {
		w := doJSON(t, aliceRouter, http.MethodPut, fmt.Sprintf("/v1/conversations/%d/save", turn.ConversationID),
			map[string]interface{}{"is_saved": true})
		require.Equal(t, http.StatusOK, w.Code)

		var conversation models.Conversation
		require.NoError(t, db.First(&conversation, turn.ConversationID).Error)
		assert.True(t, conversation.IsSaved)
	})

	t.Run("save without a flag is a bad request", func(t *testing.T) {
		w := doJSON(t, aliceRouter, http.MethodPut, fmt.Sprintf("/v1/conversations/%d/save", turn.ConversationID),
			map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("owner delete removes conversation and messages", func(t *testing.T) {
		w := doJSON(t, aliceRouter, http.MethodDelete, fmt.Sprintf("/v1/conversations/%d", turn.ConversationID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, db.Model(&models.Message{}).Where("conversation_id = ?", turn.ConversationID).Count(&count).Error)
		assert.Zero(t, count)
	})
}
