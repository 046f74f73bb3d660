package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/session"
	"github.com/herozvz07-ctrl/guilder/internal/testutil"
)

func newFormService(t *testing.T) *FormService {
	t.Helper()
	return NewFormService(testutil.OpenTestDB(t), session.NewStore(time.Hour))
}

// answersInOrder are valid replies matching FormSteps.
func answersInOrder() []StepInput {
	return []StepInput{
		{PhotoRef: "photo-file-id"},
		{Text: "Стрелок"},
		{Text: "МСК+2"},
		{Text: "да, двое"},
		{Text: "Клан Буря, ушёл из-за неактивного руководства"},
		{Text: "Хочу прокачаться до топ-10 и участвовать в войнах клана"},
		{Text: "У вас сильный состав и активные клановые войны"},
		{Text: "да, готов"},
		{Text: "3 года"},
	}
}

func TestFormRoundTrip(t *testing.T) {
	svc := newFormService(t)

	res, err := svc.Start(100, "newbie")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if res.Prompt != FormSteps[0].Prompt {
		t.Fatalf("expected first step prompt, got %q", res.Prompt)
	}

	inputs := answersInOrder()
	for i, in := range inputs {
		res, err = svc.SubmitAnswer(100, in)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if res.Retry != "" {
			t.Fatalf("step %d unexpectedly rejected: %s", i, res.Retry)
		}
	}
	if !res.AwaitingConfirmation {
		t.Fatal("expected awaiting confirmation after last step")
	}

	app, err := svc.Confirm(100)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if app.Status != models.StatusPending {
		t.Fatalf("expected pending status, got %s", app.Status)
	}
	if app.PhotoRef != "photo-file-id" {
		t.Fatalf("photo ref not carried: %q", app.PhotoRef)
	}

	// Answers map must equal the accepted inputs, keyed by step.
	for i, step := range FormSteps {
		want := inputs[i].Text
		if step.Kind == StepPhoto {
			want = inputs[i].PhotoRef
		}
		if got := app.Answers[step.Key]; got != want {
			t.Errorf("answer %q = %v, want %q", step.Key, got, want)
		}
	}

	// Session is destroyed by confirm.
	if _, ok := svc.ActiveSession(100); ok {
		t.Fatal("session survived confirm")
	}
}

func TestFormValidationDoesNotAdvance(t *testing.T) {
	svc := newFormService(t)
	if _, err := svc.Start(7, "x"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Photo step rejects text.
	res, err := svc.SubmitAnswer(7, StepInput{Text: "вот мой скрин"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Retry == "" {
		t.Fatal("expected rejection for text on photo step")
	}
	sess, _ := svc.ActiveSession(7)
	if sess.Step != 0 {
		t.Fatalf("step advanced on rejection: %d", sess.Step)
	}

	// Walk to the goals step, then send a too-short answer.
	inputs := answersInOrder()
	for i := 0; i < 5; i++ {
		if _, err := svc.SubmitAnswer(7, inputs[i]); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	sess, _ = svc.ActiveSession(7)
	stepBefore := sess.Step

	res, err = svc.SubmitAnswer(7, StepInput{Text: "качаться"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Retry == "" {
		t.Fatal("expected rejection for short goals answer")
	}
	sess, _ = svc.ActiveSession(7)
	if sess.Step != stepBefore {
		t.Fatalf("step counter changed on retry: %d -> %d", stepBefore, sess.Step)
	}

	// Same prompt re-issued, a proper answer still goes through.
	if res.Prompt != FormSteps[stepBefore].Prompt {
		t.Fatalf("expected same prompt re-issued, got %q", res.Prompt)
	}
	res, err = svc.SubmitAnswer(7, inputs[stepBefore])
	if err != nil || res.Retry != "" {
		t.Fatalf("valid retry rejected: %v %s", err, res.Retry)
	}
}

func TestFormStartReplacesSession(t *testing.T) {
	svc := newFormService(t)

	if _, err := svc.Start(5, "restarter"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.SubmitAnswer(5, StepInput{PhotoRef: "p"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// A second start before submit simply restarts the form.
	res, err := svc.Start(5, "restarter")
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if res.Session.Step != 0 || len(res.Session.Answers) != 0 {
		t.Fatal("restart did not reset the session")
	}
}

func TestFormStartBlockedWhilePending(t *testing.T) {
	svc := newFormService(t)

	if _, err := svc.Start(9, "dup"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for _, in := range answersInOrder() {
		if _, err := svc.SubmitAnswer(9, in); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if _, err := svc.Confirm(9); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	_, err := svc.Start(9, "dup")
	if !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("expected ErrAlreadyPending, got %v", err)
	}
}

func TestFormStartBannedApplicant(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewFormService(db, session.NewStore(time.Hour))

	db.Create(&models.Applicant{ID: 66, Handle: "troll", Role: models.RoleBanned})

	_, err := svc.Start(66, "troll")
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
}

func TestFormCancelIdempotent(t *testing.T) {
	svc := newFormService(t)

	svc.Cancel(1) // no session: still fine

	if _, err := svc.Start(1, "quitter"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	svc.Cancel(1)
	svc.Cancel(1)

	if _, err := svc.SubmitAnswer(1, StepInput{PhotoRef: "p"}); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after cancel, got %v", err)
	}
}

func TestFormConfirmWithoutSession(t *testing.T) {
	svc := newFormService(t)
	if _, err := svc.Confirm(404); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestValidateStepQualityThreshold(t *testing.T) {
	step := FormStep{Key: "goals", Kind: StepText, MinLen: MinQualityAnswerLen}

	if reason := ValidateStep(step, StepInput{Text: strings.Repeat("а", MinQualityAnswerLen)}); reason != "" {
		t.Fatalf("answer at threshold rejected: %s", reason)
	}
	if reason := ValidateStep(step, StepInput{Text: strings.Repeat("а", MinQualityAnswerLen-1)}); reason == "" {
		t.Fatal("answer below threshold accepted")
	}
}
