package access

import (
	"gorm.io/gorm"

	"github.com/herozvz07-ctrl/guilder/internal/models"
)

// Gate answers "who may act". Every mutating admin operation consults it;
// a denial is reported back to the chat, never acted on.
type Gate struct {
	db      *gorm.DB
	ownerID int64
}

func NewGate(db *gorm.DB, ownerID int64) *Gate {
	return &Gate{db: db, ownerID: ownerID}
}

// RoleOf resolves the role of a platform user. The configured owner id wins
// over whatever the database says; users we have never seen are plain members.
func (g *Gate) RoleOf(userID int64) string {
	if g.ownerID != 0 && userID == g.ownerID {
		return models.RoleOwner
	}
	var applicant models.Applicant
	if err := g.db.First(&applicant, "id = ?", userID).Error; err != nil {
		return models.RoleMember
	}
	return applicant.Role
}

func (g *Gate) IsOwner(userID int64) bool {
	return g.RoleOf(userID) == models.RoleOwner
}

// CanReview covers accept/reject/ban decisions on applications.
func (g *Gate) CanReview(userID int64) bool {
	role := g.RoleOf(userID)
	return role == models.RoleAdmin || role == models.RoleOwner
}

// CanVote: the tally is advisory input for admins, so the voter pool is the
// same set that can review.
func (g *Gate) CanVote(userID int64) bool {
	return g.CanReview(userID)
}

// CanConfigureRoster covers changing the roster source URL.
func (g *Gate) CanConfigureRoster(userID int64) bool {
	return g.IsOwner(userID)
}

// CanModerate covers ban/unban and leader-flag commands.
func (g *Gate) CanModerate(userID int64) bool {
	return g.CanReview(userID)
}

func (g *Gate) IsBanned(userID int64) bool {
	return g.RoleOf(userID) == models.RoleBanned
}
