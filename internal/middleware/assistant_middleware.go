package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vulkenree/fifa-tickets-app/internal/assistant"
)

func AssistantMiddleware(service *assistant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("assistant", service)
		c.Next()
	}
}

func GetAssistant(c *gin.Context) *assistant.Service {
	service, exists := c.Get("assistant")
	if !exists {
		return nil
	}
	return service.(*assistant.Service)
}
