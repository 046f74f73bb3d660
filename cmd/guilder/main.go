package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/herozvz07-ctrl/guilder/internal/access"
	"github.com/herozvz07-ctrl/guilder/internal/bot"
	"github.com/herozvz07-ctrl/guilder/internal/config"
	"github.com/herozvz07-ctrl/guilder/internal/database"
	"github.com/herozvz07-ctrl/guilder/internal/handlers"
	"github.com/herozvz07-ctrl/guilder/internal/logging"
	"github.com/herozvz07-ctrl/guilder/internal/roster"
	"github.com/herozvz07-ctrl/guilder/internal/routes"
	"github.com/herozvz07-ctrl/guilder/internal/scheduler"
	"github.com/herozvz07-ctrl/guilder/internal/services"
	"github.com/herozvz07-ctrl/guilder/internal/session"
	"github.com/herozvz07-ctrl/guilder/internal/telegram"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.BotToken == "" {
		slog.Error("BOT_TOKEN environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		dbLogHandler,
	)))

	// Log retention (30-day)
	retentionDone := make(chan struct{})
	logging.StartRetention(database.DB, 30, retentionDone)

	// Engines
	api := telegram.NewClient(cfg.BotAPIURL, cfg.BotToken)
	gate := access.NewGate(database.DB, cfg.OwnerID)
	sessions := session.NewStore(cfg.SessionTTL)
	notifier := bot.NewChatNotifier(api, cfg.ClanChatID, cfg.AdminChatID)

	formService := services.NewFormService(database.DB, sessions)
	voteService := services.NewVoteService(database.DB)
	reviewService := services.NewReviewService(database.DB)
	rosterService := services.NewRosterService(database.DB,
		roster.NewHTTPFetcher(cfg.FetchTimeout), notifier, cfg.FetchTimeout)
	rosterService.SetSourceURL(cfg.RosterURL)
	if cfg.RosterURL == "" {
		// Fall back to the source the last stored snapshot came from.
		if snap, err := rosterService.Snapshot(); err == nil {
			rosterService.SetSourceURL(snap.SourceURL)
		}
	}

	dispatcher := bot.NewDispatcher(api, cfg, gate, formService, voteService, reviewService, rosterService)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	webhookHandler := handlers.NewWebhookHandler(cfg, dispatcher)
	adminHandler := handlers.NewAdminHandler(reviewService, rosterService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))

	routes.Setup(app, cfg, healthHandler, webhookHandler, adminHandler)

	// Background jobs
	jobsDone := make(chan struct{})
	scheduler.StartReconcile(rosterService, cfg.ReconcileInterval, jobsDone)
	scheduler.StartInactivitySweep(rosterService, cfg.InactiveAfterDays, jobsDone)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(jobsDone)
	close(retentionDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
