package bot

import (
	"strings"

	"github.com/google/uuid"
)

// Callback payload actions. Application-scoped payloads encode the
// application id after the underscore; the form payloads stand alone.
const (
	ActionStartForm  = "start_anketa"
	ActionSendAll    = "send_all"
	ActionCancelForm = "cancel_anketa"
	ActionAccept     = "accept"
	ActionReject     = "reject"
	ActionBan        = "ban"
	ActionVote       = "vote"
	ActionVoteYes    = "voteyes"
	ActionVoteNo     = "voteno"
)

// Payload is a parsed callback-button payload.
type Payload struct {
	Action        string
	ApplicationID uuid.UUID
}

// ParsePayload decodes a callback data string. Unknown or malformed
// payloads come back with ok=false and are ignored by the dispatcher.
func ParsePayload(data string) (Payload, bool) {
	switch data {
	case ActionStartForm, ActionSendAll, ActionCancelForm:
		return Payload{Action: data}, true
	}

	idx := strings.IndexByte(data, '_')
	if idx <= 0 {
		return Payload{}, false
	}
	action, rest := data[:idx], data[idx+1:]
	switch action {
	case ActionAccept, ActionReject, ActionBan, ActionVote, ActionVoteYes, ActionVoteNo:
	default:
		return Payload{}, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return Payload{}, false
	}
	return Payload{Action: action, ApplicationID: id}, true
}

func payloadFor(action string, id uuid.UUID) string {
	return action + "_" + id.String()
}
