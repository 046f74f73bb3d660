package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/herozvz07-ctrl/guilder/internal/access"
	"github.com/herozvz07-ctrl/guilder/internal/config"
	"github.com/herozvz07-ctrl/guilder/internal/services"
	"github.com/herozvz07-ctrl/guilder/internal/telegram"
)

// Dispatcher routes inbound updates to whichever engine owns the user's
// current state: the form engine while a session is open, the voting engine
// for vote buttons, review/roster commands otherwise.
type Dispatcher struct {
	api     *telegram.Client
	cfg     *config.Config
	gate    *access.Gate
	forms   *services.FormService
	votes   *services.VoteService
	reviews *services.ReviewService
	roster  *services.RosterService
}

func NewDispatcher(
	api *telegram.Client,
	cfg *config.Config,
	gate *access.Gate,
	forms *services.FormService,
	votes *services.VoteService,
	reviews *services.ReviewService,
	roster *services.RosterService,
) *Dispatcher {
	return &Dispatcher{
		api:     api,
		cfg:     cfg,
		gate:    gate,
		forms:   forms,
		votes:   votes,
		reviews: reviews,
		roster:  roster,
	}
}

// HandleUpdate processes one inbound event. Errors are handled
// conversationally; nothing propagates to the webhook response.
func (d *Dispatcher) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.CallbackQuery != nil:
		d.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		d.handleMessage(ctx, upd.Message)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}
	if _, err := d.reviews.EnsureApplicant(msg.From.ID, msg.From.Handle()); err != nil {
		slog.Error("failed to upsert applicant", "applicant_id", msg.From.ID, "error", err)
	}

	if strings.HasPrefix(msg.Text, "/") {
		d.handleCommand(ctx, msg)
		return
	}

	if _, ok := d.forms.ActiveSession(msg.From.ID); ok {
		d.handleFormReply(ctx, msg)
	}
}

func (d *Dispatcher) handleFormReply(ctx context.Context, msg *telegram.Message) {
	in := services.StepInput{Text: msg.Text, PhotoRef: msg.PhotoRef()}
	res, err := d.forms.SubmitAnswer(msg.From.ID, in)
	if err != nil {
		return // session vanished between dispatch and submit
	}

	switch {
	case res.Retry != "":
		d.reply(ctx, msg.Chat.ID, res.Retry+"\n\n"+res.Prompt, nil)
	case res.AwaitingConfirmation:
		caption := renderPreview(res.Session)
		if _, err := d.api.SendPhoto(ctx, msg.Chat.ID, res.Session.PhotoRef, caption, confirmKeyboard()); err != nil {
			slog.Warn("preview delivery failed", "applicant_id", msg.From.ID, "error", err)
		}
	default:
		d.reply(ctx, msg.Chat.ID, res.Prompt, nil)
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	payload, ok := ParsePayload(cb.Data)
	if !ok || cb.From == nil {
		return
	}

	switch payload.Action {
	case ActionStartForm:
		d.startForm(ctx, cb)
	case ActionSendAll:
		d.confirmForm(ctx, cb)
	case ActionCancelForm:
		d.cancelForm(ctx, cb)
	case ActionAccept, ActionReject, ActionBan:
		d.review(ctx, cb, payload)
	case ActionVote:
		d.openVoting(ctx, cb, payload)
	case ActionVoteYes, ActionVoteNo:
		d.castVote(ctx, cb, payload)
	}
}

func (d *Dispatcher) startForm(ctx context.Context, cb *telegram.CallbackQuery) {
	res, err := d.forms.Start(cb.From.ID, cb.From.Handle())
	switch {
	case errors.Is(err, services.ErrBanned):
		d.answer(ctx, cb.ID, "🚫 Ты в бане и не можешь подать заявку.")
		return
	case errors.Is(err, services.ErrAlreadyPending):
		d.answer(ctx, cb.ID, "⏳ Твоя заявка уже на рассмотрении.")
		return
	case err != nil:
		slog.Error("form start failed", "applicant_id", cb.From.ID, "error", err)
		d.answer(ctx, cb.ID, "Что-то пошло не так, попробуй позже.")
		return
	}

	d.answer(ctx, cb.ID, "")
	if cb.Message != nil {
		if err := d.api.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, res.Prompt, nil); err != nil {
			d.reply(ctx, cb.Message.Chat.ID, res.Prompt, nil)
		}
	}
}

func (d *Dispatcher) confirmForm(ctx context.Context, cb *telegram.CallbackQuery) {
	app, err := d.forms.Confirm(cb.From.ID)
	switch {
	case errors.Is(err, services.ErrNoActiveSession):
		d.answer(ctx, cb.ID, "Анкета уже закрыта. Начни заново через /start.")
		return
	case errors.Is(err, services.ErrAlreadyPending):
		d.answer(ctx, cb.ID, "⏳ Твоя заявка уже на рассмотрении.")
		return
	case err != nil:
		slog.Error("form confirm failed", "applicant_id", cb.From.ID, "error", err)
		d.answer(ctx, cb.ID, "Не удалось отправить заявку, попробуй ещё раз.")
		return
	}

	d.answer(ctx, cb.ID, "")
	if cb.Message != nil {
		if err := d.api.DeleteMessage(ctx, cb.Message.Chat.ID, cb.Message.MessageID); err != nil {
			slog.Warn("preview cleanup failed", "error", err)
		}
		d.reply(ctx, cb.Message.Chat.ID, "✨ Твоя заявка успешно отправлена! Жди ответа.", nil)
	}

	if d.cfg.AdminChatID != 0 {
		caption := renderApplication(app)
		if _, err := d.api.SendPhoto(ctx, d.cfg.AdminChatID, app.PhotoRef, caption, reviewKeyboard(app.ID)); err != nil {
			slog.Warn("application forward failed", "application_id", app.ID, "error", err)
		}
	}
}

func (d *Dispatcher) cancelForm(ctx context.Context, cb *telegram.CallbackQuery) {
	d.forms.Cancel(cb.From.ID)
	d.answer(ctx, cb.ID, "")
	if cb.Message != nil {
		if err := d.api.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID,
			"❌ Заявка отменена. Можешь начать заново через /start", nil); err != nil {
			slog.Warn("cancel edit failed", "error", err)
		}
	}
}

func (d *Dispatcher) review(ctx context.Context, cb *telegram.CallbackQuery, payload Payload) {
	if !d.gate.CanReview(cb.From.ID) {
		d.answer(ctx, cb.ID, "⛔ Недостаточно прав.")
		return
	}

	app, err := d.reviews.GetApplication(payload.ApplicationID)
	if err != nil {
		d.answer(ctx, cb.ID, "Заявка не найдена.")
		return
	}

	var verdict, applicantNote string
	switch payload.Action {
	case ActionAccept:
		_, err = d.reviews.Accept(payload.ApplicationID, cb.From.ID)
		verdict, applicantNote = "✅ принята", "🎉 Твоя заявка принята! Добро пожаловать в клан."
	case ActionReject:
		_, err = d.reviews.Reject(payload.ApplicationID, cb.From.ID)
		verdict, applicantNote = "❌ отклонена", "😔 Твоя заявка отклонена."
	case ActionBan:
		err = d.reviews.BanApplicant(app.ApplicantID, cb.From.ID)
		verdict, applicantNote = "🚫 бан", "🚫 Доступ к подаче заявок закрыт."
	}

	switch {
	case errors.Is(err, services.ErrAlreadyDecided):
		d.answer(ctx, cb.ID, "По заявке уже есть другое решение.")
		return
	case err != nil:
		slog.Error("review action failed", "application_id", payload.ApplicationID, "action", payload.Action, "error", err)
		d.answer(ctx, cb.ID, "Не получилось применить решение.")
		return
	}

	d.answer(ctx, cb.ID, "Решение: "+verdict)
	d.notifyApplicant(ctx, app.ApplicantID, applicantNote)
	if cb.Message != nil {
		if err := d.api.EditMessageReplyMarkup(ctx, cb.Message.Chat.ID, cb.Message.MessageID, &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{},
		}); err != nil {
			slog.Warn("review keyboard cleanup failed", "error", err)
		}
	}
}

func (d *Dispatcher) openVoting(ctx context.Context, cb *telegram.CallbackQuery, payload Payload) {
	if !d.gate.CanVote(cb.From.ID) {
		d.answer(ctx, cb.ID, "⛔ Недостаточно прав.")
		return
	}

	tally, err := d.votes.TallyFor(payload.ApplicationID)
	if err != nil {
		d.answer(ctx, cb.ID, "Заявка не найдена.")
		return
	}

	d.answer(ctx, cb.ID, "")
	if cb.Message != nil {
		if err := d.api.EditMessageReplyMarkup(ctx, cb.Message.Chat.ID, cb.Message.MessageID,
			voteKeyboard(payload.ApplicationID, tally)); err != nil {
			slog.Warn("vote keyboard render failed", "error", err)
		}
	}
}

func (d *Dispatcher) castVote(ctx context.Context, cb *telegram.CallbackQuery, payload Payload) {
	if !d.gate.CanVote(cb.From.ID) {
		d.answer(ctx, cb.ID, "⛔ Недостаточно прав.")
		return
	}

	choice := "yes"
	if payload.Action == ActionVoteNo {
		choice = "no"
	}

	tally, err := d.votes.CastVote(payload.ApplicationID, cb.From.ID, choice)
	if errors.Is(err, services.ErrApplicationNotFound) {
		d.answer(ctx, cb.ID, "Заявка не найдена.")
		return
	}
	if err != nil {
		slog.Error("vote cast failed", "application_id", payload.ApplicationID, "error", err)
		d.answer(ctx, cb.ID, "Голос не прошёл, попробуй ещё раз.")
		return
	}

	d.answer(ctx, cb.ID, "🗳 Голос учтён")
	if cb.Message != nil {
		if err := d.api.EditMessageReplyMarkup(ctx, cb.Message.Chat.ID, cb.Message.MessageID,
			voteKeyboard(payload.ApplicationID, tally)); err != nil {
			slog.Warn("tally render failed", "error", err)
		}
	}
}

func (d *Dispatcher) notifyApplicant(ctx context.Context, applicantID int64, text string) {
	// Private chats share the user id, so the applicant id doubles as the
	// destination chat.
	if _, err := d.api.SendMessage(ctx, applicantID, text, nil); err != nil {
		slog.Warn("applicant notification failed", "applicant_id", applicantID, "error", err)
	}
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string, kb *telegram.InlineKeyboardMarkup) {
	if _, err := d.api.SendMessage(ctx, chatID, text, kb); err != nil {
		slog.Warn("reply delivery failed", "chat_id", chatID, "error", err)
	}
}

func (d *Dispatcher) answer(ctx context.Context, callbackID, text string) {
	if err := d.api.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		slog.Warn("callback ack failed", "error", err)
	}
}

func (d *Dispatcher) greeting() string {
	return fmt.Sprintf("👋 Привет! Ты попал в бота клана **%s**.\nГотов заявить о себе?", d.cfg.ClanName)
}
