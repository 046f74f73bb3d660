package access

import (
	"testing"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/testutil"
)

func TestRoleResolution(t *testing.T) {
	db := testutil.OpenTestDB(t)
	db.Create(&models.Applicant{ID: 2, Handle: "mod", Role: models.RoleAdmin})
	db.Create(&models.Applicant{ID: 3, Handle: "pleb", Role: models.RoleMember})
	db.Create(&models.Applicant{ID: 4, Handle: "troll", Role: models.RoleBanned})

	gate := NewGate(db, 1)

	cases := []struct {
		userID int64
		role   string
	}{
		{1, models.RoleOwner}, // configured owner wins over any row
		{2, models.RoleAdmin},
		{3, models.RoleMember},
		{4, models.RoleBanned},
		{99, models.RoleMember}, // never seen
	}
	for _, c := range cases {
		if got := gate.RoleOf(c.userID); got != c.role {
			t.Errorf("RoleOf(%d) = %s, want %s", c.userID, got, c.role)
		}
	}
}

func TestCapabilities(t *testing.T) {
	db := testutil.OpenTestDB(t)
	db.Create(&models.Applicant{ID: 2, Role: models.RoleAdmin})
	db.Create(&models.Applicant{ID: 3, Role: models.RoleMember})

	gate := NewGate(db, 1)

	if !gate.CanReview(1) || !gate.CanReview(2) || gate.CanReview(3) {
		t.Error("review capability wrong")
	}
	if !gate.CanVote(2) || gate.CanVote(3) {
		t.Error("vote capability wrong")
	}
	if !gate.CanConfigureRoster(1) || gate.CanConfigureRoster(2) {
		t.Error("roster configuration must be owner-only")
	}
	if gate.IsBanned(3) {
		t.Error("member flagged as banned")
	}
}
