package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/session"
)

var (
	ErrAlreadyPending  = errors.New("an application is already pending review")
	ErrBanned          = errors.New("applicant is banned")
	ErrNoActiveSession = errors.New("no active form session")
)

// FormService drives one applicant through the fixed questionnaire. Sessions
// are per-applicant, so two applicants never contend; all durable state is a
// single Application row created on confirm.
type FormService struct {
	db       *gorm.DB
	sessions *session.Store
}

func NewFormService(db *gorm.DB, sessions *session.Store) *FormService {
	return &FormService{db: db, sessions: sessions}
}

// StepResult is the outcome of feeding one reply into the form.
type StepResult struct {
	// Retry is the validation explanation when the step did not advance.
	Retry string
	// Prompt is the next question to ask (also set on retry, same step).
	Prompt string
	// AwaitingConfirmation is set once the last step was accepted; the
	// caller should render the full-answer preview from Session.
	AwaitingConfirmation bool
	Session              *session.Session
}

// Start begins (or restarts) the questionnaire. A banned applicant is turned
// away; one with an application already pending review is blocked. An
// in-progress session is simply replaced: until confirm, nothing durable
// exists to protect.
func (s *FormService) Start(applicantID int64, handle string) (*StepResult, error) {
	var applicant models.Applicant
	if err := s.db.First(&applicant, "id = ?", applicantID).Error; err == nil {
		if applicant.Role == models.RoleBanned {
			return nil, ErrBanned
		}
	}

	var count int64
	s.db.Model(&models.Application{}).
		Where("applicant_id = ? AND status = ?", applicantID, models.StatusPending).
		Count(&count)
	if count > 0 {
		return nil, ErrAlreadyPending
	}

	sess := session.New(applicantID, handle)
	s.sessions.Put(sess)

	return &StepResult{Prompt: FormSteps[0].Prompt, Session: sess}, nil
}

// SubmitAnswer validates the reply against the current step's rule. A
// rejected reply re-issues the same prompt with an explanation; this is a
// recoverable outcome, not an error. An accepted reply stores the answer and
// advances; after the last step the session moves to awaiting_confirmation.
func (s *FormService) SubmitAnswer(applicantID int64, in StepInput) (*StepResult, error) {
	sess, ok := s.sessions.Get(applicantID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if sess.State != session.StateCollecting {
		// Already past the last step; re-show the preview.
		return &StepResult{AwaitingConfirmation: true, Session: sess}, nil
	}

	step := FormSteps[sess.Step]
	if reason := ValidateStep(step, in); reason != "" {
		return &StepResult{Retry: reason, Prompt: step.Prompt, Session: sess}, nil
	}

	if step.Kind == StepPhoto {
		sess.PhotoRef = in.PhotoRef
		sess.Answers[step.Key] = in.PhotoRef
	} else {
		sess.Answers[step.Key] = in.Text
	}

	sess.Step++
	if sess.Step >= len(FormSteps) {
		sess.State = session.StateAwaitingConfirmation
		s.sessions.Put(sess)
		return &StepResult{AwaitingConfirmation: true, Session: sess}, nil
	}

	s.sessions.Put(sess)
	return &StepResult{Prompt: FormSteps[sess.Step].Prompt, Session: sess}, nil
}

// Confirm turns the completed session into a pending Application and
// destroys the session. The pending-uniqueness check runs again here: the
// session may have outlived an earlier submission.
func (s *FormService) Confirm(applicantID int64) (*models.Application, error) {
	sess, ok := s.sessions.Get(applicantID)
	if !ok || sess.State != session.StateAwaitingConfirmation {
		return nil, ErrNoActiveSession
	}

	var count int64
	s.db.Model(&models.Application{}).
		Where("applicant_id = ? AND status = ?", applicantID, models.StatusPending).
		Count(&count)
	if count > 0 {
		s.sessions.Delete(applicantID)
		return nil, ErrAlreadyPending
	}

	answers := make(datatypes.JSONMap, len(sess.Answers))
	for k, v := range sess.Answers {
		answers[k] = v
	}

	app := models.Application{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		Handle:      sess.Handle,
		Answers:     answers,
		PhotoRef:    sess.PhotoRef,
		Status:      models.StatusPending,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.sessions.Delete(applicantID)
	return &app, nil
}

// Cancel destroys the session. Calling it without one is a no-op.
func (s *FormService) Cancel(applicantID int64) {
	s.sessions.Delete(applicantID)
}

// ActiveSession reports whether the applicant is mid-form, for dispatch.
func (s *FormService) ActiveSession(applicantID int64) (*session.Session, bool) {
	return s.sessions.Get(applicantID)
}
