package bot

import (
	"context"
	"log/slog"

	"github.com/herozvz07-ctrl/guilder/internal/telegram"
)

// ChatNotifier posts notices to the clan and admin chats over the Bot API.
// Delivery is best-effort: failures are logged at warn and swallowed.
type ChatNotifier struct {
	api         *telegram.Client
	clanChatID  int64
	adminChatID int64
}

func NewChatNotifier(api *telegram.Client, clanChatID, adminChatID int64) *ChatNotifier {
	return &ChatNotifier{api: api, clanChatID: clanChatID, adminChatID: adminChatID}
}

func (n *ChatNotifier) NotifyClan(ctx context.Context, text string) {
	if n.clanChatID == 0 {
		return
	}
	if _, err := n.api.SendMessage(ctx, n.clanChatID, text, nil); err != nil {
		slog.Warn("clan notification failed", "error", err)
	}
}

func (n *ChatNotifier) NotifyAdmins(ctx context.Context, text string) {
	if n.adminChatID == 0 {
		return
	}
	if _, err := n.api.SendMessage(ctx, n.adminChatID, text, nil); err != nil {
		slog.Warn("admin notification failed", "error", err)
	}
}
