package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/config"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/database"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/routes"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/store"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to the message store
	var client store.Client
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pool, err := database.Connect(context.Background(), cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		client = store.NewPostgresClient(pool)
	case config.StoreBackendSupabase:
		client = store.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	default:
		log.Fatalf("Unknown store backend: %s", cfg.StoreBackend)
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, client)

	// 4. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
