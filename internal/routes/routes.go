package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/herozvz07-ctrl/guilder/internal/config"
	"github.com/herozvz07-ctrl/guilder/internal/handlers"
	"github.com/herozvz07-ctrl/guilder/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	adminHandler *handlers.AdminHandler,
) {
	// Webhook deliveries arrive from Telegram's infrastructure; no rate
	// limit here, the secret header is the gate.
	app.Post("/webhook", webhookHandler.Receive)

	api := app.Group("/api")

	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	admin := api.Group("/admin", middleware.AdminTokenRequired(cfg))
	admin.Get("/applications", adminHandler.ListApplications)
	admin.Get("/roster", adminHandler.GetRoster)
	admin.Get("/roster/inactive", adminHandler.ListInactive)
	admin.Post("/reconcile", adminHandler.TriggerReconcile)
}
