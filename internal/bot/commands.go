package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/herozvz07-ctrl/guilder/internal/services"
	"github.com/herozvz07-ctrl/guilder/internal/telegram"
)

// handleCommand routes slash commands. Authorization failures are reported
// as a reply; the attempted action never runs.
func (d *Dispatcher) handleCommand(ctx context.Context, msg *telegram.Message) {
	cmd, arg := splitCommand(msg.Text)

	switch cmd {
	case "/start":
		d.reply(ctx, msg.Chat.ID, d.greeting(), startKeyboard(d.cfg.ClanName))

	case "/setroster":
		if !d.gate.CanConfigureRoster(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Только владелец может менять источник ростера.", nil)
			return
		}
		if arg == "" {
			d.reply(ctx, msg.Chat.ID, "Использование: /setroster <url>", nil)
			return
		}
		d.roster.SetSourceURL(arg)
		d.reply(ctx, msg.Chat.ID, "Источник ростера обновлён. Запускаю сверку…", nil)
		d.runReconcile(ctx, msg.Chat.ID)

	case "/reconcile":
		if !d.gate.CanModerate(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Недостаточно прав.", nil)
			return
		}
		d.runReconcile(ctx, msg.Chat.ID)

	case "/roster":
		if !d.gate.CanModerate(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Недостаточно прав.", nil)
			return
		}
		snapshot, err := d.roster.Snapshot()
		if errors.Is(err, services.ErrNoSnapshot) {
			d.reply(ctx, msg.Chat.ID, "Ростер ещё ни разу не загружался.", nil)
			return
		}
		if err != nil {
			slog.Error("roster read failed", "error", err)
			return
		}
		d.reply(ctx, msg.Chat.ID, renderRoster(snapshot), nil)

	case "/inactive":
		if !d.gate.CanModerate(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Недостаточно прав.", nil)
			return
		}
		days := d.cfg.InactiveAfterDays
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			days = n
		}
		stale, err := d.roster.CheckInactive(ctx, days)
		if errors.Is(err, services.ErrNoSnapshot) {
			d.reply(ctx, msg.Chat.ID, "Ростер ещё ни разу не загружался.", nil)
			return
		}
		if err != nil {
			slog.Error("inactivity check failed", "error", err)
			return
		}
		d.reply(ctx, msg.Chat.ID, fmt.Sprintf("Неактивных больше %d дней: %d", days, len(stale)), nil)

	case "/promote":
		if !d.gate.IsOwner(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Только владелец может назначать админов.", nil)
			return
		}
		target, ok := targetUser(msg, arg)
		if !ok {
			d.reply(ctx, msg.Chat.ID, "Ответь на сообщение пользователя или укажи id.", nil)
			return
		}
		if err := d.reviews.Promote(target); err != nil {
			d.reply(ctx, msg.Chat.ID, "Не нашёл такого пользователя.", nil)
			return
		}
		d.reply(ctx, msg.Chat.ID, "⭐ Пользователь назначен админом.", nil)

	case "/ban":
		if !d.gate.CanModerate(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Недостаточно прав.", nil)
			return
		}
		target, ok := targetUser(msg, arg)
		if !ok {
			d.reply(ctx, msg.Chat.ID, "Ответь на сообщение пользователя или укажи id.", nil)
			return
		}
		if err := d.reviews.BanApplicant(target, msg.From.ID); err != nil {
			d.reply(ctx, msg.Chat.ID, "Не нашёл такого пользователя.", nil)
			return
		}
		d.reply(ctx, msg.Chat.ID, "🚫 Пользователь забанен.", nil)

	case "/unban":
		if !d.gate.CanModerate(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Недостаточно прав.", nil)
			return
		}
		target, ok := targetUser(msg, arg)
		if !ok {
			d.reply(ctx, msg.Chat.ID, "Ответь на сообщение пользователя или укажи id.", nil)
			return
		}
		if err := d.reviews.Unban(target); err != nil {
			d.reply(ctx, msg.Chat.ID, "Пользователь не в бане.", nil)
			return
		}
		d.reply(ctx, msg.Chat.ID, "✅ Бан снят.", nil)

	case "/leader", "/unleader":
		if !d.gate.CanModerate(msg.From.ID) {
			d.reply(ctx, msg.Chat.ID, "⛔ Недостаточно прав.", nil)
			return
		}
		if arg == "" {
			d.reply(ctx, msg.Chat.ID, "Использование: "+cmd+" <ник>", nil)
			return
		}
		err := d.roster.SetLeader(arg, cmd == "/leader")
		if errors.Is(err, services.ErrMemberNotFound) {
			d.reply(ctx, msg.Chat.ID, "Нет такого ника в ростере.", nil)
			return
		}
		if err != nil {
			slog.Error("leader flag update failed", "error", err)
			return
		}
		d.reply(ctx, msg.Chat.ID, "Флаг лидера обновлён для "+arg+".", nil)
	}
}

func (d *Dispatcher) runReconcile(ctx context.Context, chatID int64) {
	res, err := d.roster.ReconcileCurrent(ctx)
	switch {
	case errors.Is(err, services.ErrNoSourceURL):
		d.reply(ctx, chatID, "Сначала задай источник: /setroster <url>", nil)
	case errors.Is(err, services.ErrFetchFailed):
		d.reply(ctx, chatID, "⚠️ Не удалось получить ростер, прежние данные сохранены.", nil)
	case err != nil:
		slog.Error("manual reconcile failed", "error", err)
		d.reply(ctx, chatID, "⚠️ Сверка не удалась.", nil)
	default:
		d.reply(ctx, chatID, fmt.Sprintf(
			"Сверка готова: %d участников, +%d / −%d, средний уровень %.1f",
			res.MemberCount, len(res.Joined), len(res.Left), res.AvgLevel), nil)
	}
}

func splitCommand(text string) (cmd, arg string) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	cmd = parts[0]
	// Group chats suffix commands with the bot name.
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

// targetUser resolves the subject of a moderation command: the replied-to
// message's author, or a numeric id argument.
func targetUser(msg *telegram.Message, arg string) (int64, bool) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return msg.ReplyToMessage.From.ID, true
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id != 0 {
		return id, true
	}
	return 0, false
}
