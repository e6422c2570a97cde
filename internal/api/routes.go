package api

import (
	"github.com/bilgisen/weeklyissue/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, adminKey string) {
	// API group with versioning
	api := app.Group("/api/v1")

	// Health check endpoint
	api.Get("/health", handlers.HealthCheck)

	// Latest issue
	api.Get("/issue", handlers.GetIssue)

	// Admin endpoints
	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	admin.Post("/generate", middleware.ValidateRequest[GenerateRequest](), handlers.Generate)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
