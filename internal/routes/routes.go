package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/config"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/handlers"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/middleware"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/repository"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/services"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/store"
	dashws "github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, client store.Client) {
	messageRepo := repository.NewMessageRepository(client)
	bulkReader := repository.NewBulkReader(client)

	cache := services.NewConversationCache(cfg.CacheTTL)
	conversationService := services.NewConversationService(bulkReader, cache)
	threadService := services.NewThreadService(messageRepo)
	webhookService := services.NewWebhookService(messageRepo)

	hub := dashws.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(cfg.JWTSecret, cfg.OperatorEmail, cfg.OperatorPasswordHash)
	conversationHandler := handlers.NewConversationHandler(conversationService, threadService, hub)
	webhookHandler := handlers.NewWebhookHandler(webhookService, hub)

	api := app.Group("/api")

	api.Post("/auth/login", authHandler.Login)
	api.Post("/webhook/whatsapp", webhookHandler.HandleIncoming)

	protected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	conversations := protected.Group("/conversations")
	conversations.Get("", conversationHandler.ListConversations)
	conversations.Get("/:phone", conversationHandler.GetThread)
	conversations.Patch("/:phone", conversationHandler.MarkRead)

	protected.Use("/ws", conversationHandler.WebSocketAuth)
	protected.Get("/ws", websocket.New(conversationHandler.HandleWebSocket))

	if cfg.DocsEnabled() {
		registerDocs(api)
	}
}
