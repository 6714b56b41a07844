package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"skillhub/backend/config"
	"skillhub/backend/middleware"
	"skillhub/backend/routes"
	"skillhub/backend/services"
	"skillhub/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger)

	// Background scheduler: event reminders, notification cleanup,
	// goal expiry sweep
	notifications := services.NewNotificationService(db, logger)
	scheduler := services.NewScheduler(db, notifications, logger)
	scheduler.Start(context.Background())

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
