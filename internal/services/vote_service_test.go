package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/testutil"
)

func seedApplication(t *testing.T, db *gorm.DB, applicantID int64) uuid.UUID {
	t.Helper()
	app := models.Application{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		Handle:      "pending",
		Status:      models.StatusPending,
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("failed to seed application: %v", err)
	}
	return app.ID
}

func TestCastVoteIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewVoteService(db)
	appID := seedApplication(t, db, 1)

	first, err := svc.CastVote(appID, 10, models.VoteYes)
	if err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	second, err := svc.CastVote(appID, 10, models.VoteYes)
	if err != nil {
		t.Fatalf("repeat cast failed: %v", err)
	}
	if first.Yes != 1 || second.Yes != 1 {
		t.Fatalf("repeat cast changed the tally: %+v -> %+v", first, second)
	}
}

func TestCastVoteSwitchesSides(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewVoteService(db)
	appID := seedApplication(t, db, 2)

	if _, err := svc.CastVote(appID, 10, models.VoteYes); err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	tally, err := svc.CastVote(appID, 10, models.VoteNo)
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if tally.Yes != 0 || tally.No != 1 {
		t.Fatalf("voter appears on both sides: %+v", tally)
	}

	// The sets stay disjoint at the row level too.
	var count int64
	db.Model(&models.Vote{}).Where("application_id = ?", appID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single vote row, got %d", count)
	}
}

func TestCastVoteUnknownApplication(t *testing.T) {
	svc := NewVoteService(testutil.OpenTestDB(t))
	_, err := svc.CastVote(uuid.New(), 10, models.VoteYes)
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestCastVoteInvalidChoice(t *testing.T) {
	svc := NewVoteService(testutil.OpenTestDB(t))
	if _, err := svc.CastVote(uuid.New(), 10, "maybe"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestConcurrentCastsStayDisjoint(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewVoteService(db)
	appID := seedApplication(t, db, 3)

	const voters = 8
	var wg sync.WaitGroup
	for v := int64(1); v <= voters; v++ {
		wg.Add(1)
		go func(voterID int64) {
			defer wg.Done()
			choice := models.VoteYes
			if voterID%2 == 0 {
				choice = models.VoteNo
			}
			// Every voter flips once; the final row must match the
			// last cast.
			if _, err := svc.CastVote(appID, voterID, choice); err != nil {
				t.Errorf("cast failed: %v", err)
			}
			if _, err := svc.CastVote(appID, voterID, models.VoteYes); err != nil {
				t.Errorf("recast failed: %v", err)
			}
		}(v)
	}
	wg.Wait()

	tally, err := svc.TallyFor(appID)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Yes != voters || tally.No != 0 {
		t.Fatalf("expected everyone on yes after recast, got %+v", tally)
	}

	var rows int64
	db.Model(&models.Vote{}).Where("application_id = ?", appID).Count(&rows)
	if rows != voters {
		t.Fatalf("union exceeds distinct voters: %d rows", rows)
	}
}
