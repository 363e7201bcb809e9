package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/config"
	"github.com/vulkenree/fifa-tickets-app/internal/assistant"
	"github.com/vulkenree/fifa-tickets-app/internal/handlers"
	"github.com/vulkenree/fifa-tickets-app/internal/llm"
	"github.com/vulkenree/fifa-tickets-app/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	openaiCfg, err := config.LoadOpenAIConfig()
	if err != nil {
		return fmt.Errorf("failed to load OpenAI config: %v", err)
	}
	client := llm.NewClient(openaiCfg.APIKey, openaiCfg.Model)

	assistantService, err := assistant.NewService(db, client)
	if err != nil {
		return fmt.Errorf("failed to build assistant: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db, assistantService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, assistantService *assistant.Service) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.AssistantMiddleware(assistantService))

	r.GET("/ping", handlers.Ping)
	r.GET("/health", handlers.Health)

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		matchPublic := public.Group("/matches")
		{
			matchPublic.GET("", handlers.ListMatches)
			matchPublic.GET("/:number", handlers.GetMatch)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/me", handlers.GetCurrentUser)

		ticketProtected := protected.Group("/tickets")
		{
			ticketProtected.GET("", handlers.ListTickets)
			ticketProtected.POST("", handlers.CreateTicket)
			ticketProtected.PUT("/:id", handlers.UpdateTicket)
			ticketProtected.DELETE("/:id", handlers.DeleteTicket)
			ticketProtected.GET("/:id/qr", handlers.GenerateTicketQR)
		}

		protected.POST("/chat", handlers.Chat)

		conversationProtected := protected.Group("/conversations")
		{
			conversationProtected.GET("", handlers.ListConversations)
			conversationProtected.GET("/:id", handlers.GetConversation)
			conversationProtected.PUT("/:id/save", handlers.SaveConversation)
			conversationProtected.DELETE("/:id", handlers.DeleteConversation)
		}
	}
}
