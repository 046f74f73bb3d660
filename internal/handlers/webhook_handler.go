package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/herozvz07-ctrl/guilder/internal/bot"
	"github.com/herozvz07-ctrl/guilder/internal/config"
	"github.com/herozvz07-ctrl/guilder/internal/dto"
	"github.com/herozvz07-ctrl/guilder/internal/telegram"
)

// WebhookHandler receives Bot API update deliveries. Telegram retries on
// non-200, so processing errors are absorbed after logging: a poisoned
// update must not wedge the queue.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher *bot.Dispatcher
}

func NewWebhookHandler(cfg *config.Config, dispatcher *bot.Dispatcher) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, dispatcher: dispatcher}
}

func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	if h.cfg.WebhookSecret != "" &&
		c.Get("X-Telegram-Bot-Api-Secret-Token") != h.cfg.WebhookSecret {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}

	var update telegram.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		slog.Warn("undecodable update", "error", err)
		return c.SendStatus(fiber.StatusOK)
	}

	h.dispatcher.HandleUpdate(c.Context(), update)
	return c.SendStatus(fiber.StatusOK)
}
