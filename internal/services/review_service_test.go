package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/testutil"
)

func TestEnsureApplicant(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewReviewService(db)

	a, err := svc.EnsureApplicant(42, "newcomer")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if a.Role != models.RoleMember {
		t.Fatalf("new applicant role = %s, want member", a.Role)
	}

	// Handle updates follow, role stays put.
	db.Model(&models.Applicant{}).Where("id = ?", 42).Update("role", models.RoleAdmin)
	a, err = svc.EnsureApplicant(42, "renamed")
	if err != nil {
		t.Fatalf("re-ensure failed: %v", err)
	}
	if a.Handle != "renamed" || a.Role != models.RoleAdmin {
		t.Fatalf("unexpected applicant after update: %+v", a)
	}
}

func TestDecisionTerminality(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewReviewService(db)
	appID := seedApplication(t, db, 42)

	app, err := svc.Accept(appID, 1)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if app.Status != models.StatusApproved || app.ReviewerID == nil || *app.ReviewerID != 1 {
		t.Fatalf("unexpected application after accept: %+v", app)
	}

	// Same terminal status again: no-op success.
	if _, err := svc.Accept(appID, 2); err != nil {
		t.Fatalf("idempotent accept errored: %v", err)
	}

	// A different terminal status is refused.
	if _, err := svc.Reject(appID, 2); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}

	// Original reviewer survives.
	reloaded, _ := svc.GetApplication(appID)
	if *reloaded.ReviewerID != 1 {
		t.Fatalf("reviewer overwritten: %d", *reloaded.ReviewerID)
	}
}

func TestBanApplicantClosesPendingApplication(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewReviewService(db)

	if _, err := svc.EnsureApplicant(7, "troll"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	appID := seedApplication(t, db, 7)

	if err := svc.BanApplicant(7, 1); err != nil {
		t.Fatalf("ban failed: %v", err)
	}

	var applicant models.Applicant
	db.First(&applicant, "id = ?", 7)
	if applicant.Role != models.RoleBanned {
		t.Fatalf("role = %s, want banned", applicant.Role)
	}

	app, _ := svc.GetApplication(appID)
	if app.Status != models.StatusBanned {
		t.Fatalf("pending application not closed: %s", app.Status)
	}

	// Unban restores plain membership; ban-less unban is refused.
	if err := svc.Unban(7); err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if err := svc.Unban(7); !errors.Is(err, ErrApplicantUnknown) {
		t.Fatalf("expected ErrApplicantUnknown for double unban, got %v", err)
	}
}

func TestBanUnknownApplicant(t *testing.T) {
	svc := NewReviewService(testutil.OpenTestDB(t))
	if err := svc.BanApplicant(999, 1); !errors.Is(err, ErrApplicantUnknown) {
		t.Fatalf("expected ErrApplicantUnknown, got %v", err)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	svc := NewReviewService(testutil.OpenTestDB(t))
	if _, err := svc.GetApplication(uuid.New()); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestListApplications(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewReviewService(db)

	first := seedApplication(t, db, 1)
	seedApplication(t, db, 2)
	if _, err := svc.Accept(first, 99); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	pending, total, err := svc.ListApplications(models.StatusPending, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Fatalf("pending list = %d/%d, want 1/1", len(pending), total)
	}

	all, total, err := svc.ListApplications("", 10, 0)
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("full list = %d/%d (%v), want 2/2", len(all), total, err)
	}
}
