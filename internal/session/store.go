package session

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Session states.
const (
	StateCollecting           = "collecting"
	StateAwaitingConfirmation = "awaiting_confirmation"
)

// Session is the per-applicant form state while the questionnaire is being
// filled in. It lives only in the store; submit and cancel both destroy it.
type Session struct {
	ApplicantID int64
	Handle      string
	State       string
	Step        int
	Answers     map[string]string
	PhotoRef    string
}

func New(applicantID int64, handle string) *Session {
	return &Session{
		ApplicantID: applicantID,
		Handle:      handle,
		State:       StateCollecting,
		Answers:     make(map[string]string),
	}
}

// Store holds at most one Session per applicant. Abandoned sessions expire
// after the idle TTL; every Put refreshes the clock.
type Store struct {
	c *gocache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{c: gocache.New(ttl, 10*time.Minute)}
}

func (s *Store) Get(applicantID int64) (*Session, bool) {
	v, ok := s.c.Get(key(applicantID))
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (s *Store) Put(sess *Session) {
	s.c.SetDefault(key(sess.ApplicantID), sess)
}

func (s *Store) Delete(applicantID int64) {
	s.c.Delete(key(applicantID))
}

func key(applicantID int64) string {
	return strconv.FormatInt(applicantID, 10)
}
