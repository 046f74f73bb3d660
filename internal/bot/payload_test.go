package bot

import (
	"testing"

	"github.com/google/uuid"
)

func TestParsePayloadRoundTrip(t *testing.T) {
	id := uuid.New()
	for _, action := range []string{ActionAccept, ActionReject, ActionBan, ActionVote, ActionVoteYes, ActionVoteNo} {
		p, ok := ParsePayload(payloadFor(action, id))
		if !ok {
			t.Fatalf("payload for %s did not parse", action)
		}
		if p.Action != action || p.ApplicationID != id {
			t.Fatalf("round trip mismatch: %+v", p)
		}
	}
}

func TestParsePayloadBareActions(t *testing.T) {
	for _, data := range []string{ActionStartForm, ActionSendAll, ActionCancelForm} {
		p, ok := ParsePayload(data)
		if !ok || p.Action != data {
			t.Fatalf("bare payload %q did not parse: %+v", data, p)
		}
	}
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"accept_",
		"accept_not-a-uuid",
		"explode_" + uuid.NewString(),
		"_" + uuid.NewString(),
		"plaintext",
	} {
		if _, ok := ParsePayload(data); ok {
			t.Errorf("payload %q unexpectedly parsed", data)
		}
	}
}
