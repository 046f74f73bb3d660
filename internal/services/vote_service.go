package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/herozvz07-ctrl/guilder/internal/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidChoice       = errors.New("vote choice must be yes or no")
)

// Tally is the current yes/no count on an application.
type Tally struct {
	Yes int64 `json:"yes"`
	No  int64 `json:"no"`
}

// VoteService maintains the advisory tally on pending applications. A cast
// is a set-replace: the voter ends up in exactly the chosen side, wherever
// they were before. Nothing closes automatically; the tally only informs the
// human decision.
type VoteService struct {
	db    *gorm.DB
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db, locks: make(map[uuid.UUID]*sync.Mutex)}
}

// lockFor serializes casts per application id; casts on different
// applications proceed independently.
func (s *VoteService) lockFor(applicationID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[applicationID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[applicationID] = l
	}
	return l
}

// CastVote records the voter's current choice and returns the updated tally.
// Casting the same choice again is an idempotent success.
func (s *VoteService) CastVote(applicationID uuid.UUID, voterID int64, choice string) (Tally, error) {
	if choice != models.VoteYes && choice != models.VoteNo {
		return Tally{}, ErrInvalidChoice
	}

	l := s.lockFor(applicationID)
	l.Lock()
	defer l.Unlock()

	var app models.Application
	if err := s.db.First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Tally{}, ErrApplicationNotFound
		}
		return Tally{}, fmt.Errorf("failed to load application: %w", err)
	}

	vote := models.Vote{ApplicationID: applicationID, VoterID: voterID, Choice: choice}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"choice", "updated_at"}),
	}).Create(&vote).Error
	if err != nil {
		return Tally{}, fmt.Errorf("failed to record vote: %w", err)
	}

	return s.tally(applicationID)
}

// TallyFor returns the current tally without mutating anything.
func (s *VoteService) TallyFor(applicationID uuid.UUID) (Tally, error) {
	var app models.Application
	if err := s.db.First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Tally{}, ErrApplicationNotFound
		}
		return Tally{}, fmt.Errorf("failed to load application: %w", err)
	}
	return s.tally(applicationID)
}

func (s *VoteService) tally(applicationID uuid.UUID) (Tally, error) {
	var t Tally
	if err := s.db.Model(&models.Vote{}).
		Where("application_id = ? AND choice = ?", applicationID, models.VoteYes).
		Count(&t.Yes).Error; err != nil {
		return Tally{}, err
	}
	if err := s.db.Model(&models.Vote{}).
		Where("application_id = ? AND choice = ?", applicationID, models.VoteNo).
		Count(&t.No).Error; err != nil {
		return Tally{}, err
	}
	return t, nil
}
