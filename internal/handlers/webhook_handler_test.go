package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/herozvz07-ctrl/guilder/internal/access"
	"github.com/herozvz07-ctrl/guilder/internal/bot"
	"github.com/herozvz07-ctrl/guilder/internal/config"
	"github.com/herozvz07-ctrl/guilder/internal/services"
	"github.com/herozvz07-ctrl/guilder/internal/session"
	"github.com/herozvz07-ctrl/guilder/internal/telegram"
	"github.com/herozvz07-ctrl/guilder/internal/testutil"
)

func newWebhookApp(t *testing.T, secret string) *fiber.App {
	t.Helper()

	db := testutil.OpenTestDB(t)
	cfg := &config.Config{WebhookSecret: secret, ClanName: "IOT"}
	api := telegram.NewClient("http://127.0.0.1:0", "token")
	dispatcher := bot.NewDispatcher(
		api,
		cfg,
		access.NewGate(db, 0),
		services.NewFormService(db, session.NewStore(time.Hour)),
		services.NewVoteService(db),
		services.NewReviewService(db),
		services.NewRosterService(db, nil, services.NopNotifier{}, time.Second),
	)

	app := fiber.New()
	app.Post("/webhook", NewWebhookHandler(cfg, dispatcher).Receive)
	return app
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	app := newWebhookApp(t, "s3cret")

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestWebhookAcceptsUpdate(t *testing.T) {
	app := newWebhookApp(t, "s3cret")

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "s3cret")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestWebhookAbsorbsGarbage(t *testing.T) {
	app := newWebhookApp(t, "")

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{not json`))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	// Telegram retries non-200 responses forever; garbage gets a 200.
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
