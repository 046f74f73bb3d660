package bot

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/herozvz07-ctrl/guilder/internal/services"
	"github.com/herozvz07-ctrl/guilder/internal/telegram"
)

func startKeyboard(clanName string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "🛡 ВСТУПИТЬ В " + clanName, CallbackData: ActionStartForm},
		}},
	}
}

func confirmKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✅ ОТПРАВИТЬ", CallbackData: ActionSendAll},
			{Text: "❌ ОТМЕНА", CallbackData: ActionCancelForm},
		}},
	}
}

func reviewKeyboard(applicationID uuid.UUID) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "✅ Принять", CallbackData: payloadFor(ActionAccept, applicationID)}},
			{{Text: "❌ Отклонить", CallbackData: payloadFor(ActionReject, applicationID)}},
			{{Text: "🚫 БАН", CallbackData: payloadFor(ActionBan, applicationID)}},
			{{Text: "🗳 На голосование", CallbackData: payloadFor(ActionVote, applicationID)}},
		},
	}
}

// voteKeyboard renders the live tally in the button labels so casts update
// in place via an edit.
func voteKeyboard(applicationID uuid.UUID, tally services.Tally) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("👍 За (%d)", tally.Yes), CallbackData: payloadFor(ActionVoteYes, applicationID)},
				{Text: fmt.Sprintf("👎 Против (%d)", tally.No), CallbackData: payloadFor(ActionVoteNo, applicationID)},
			},
			{{Text: "✅ Принять", CallbackData: payloadFor(ActionAccept, applicationID)}},
			{{Text: "❌ Отклонить", CallbackData: payloadFor(ActionReject, applicationID)}},
		},
	}
}
