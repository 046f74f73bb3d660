package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Application statuses. Every status except pending is terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusBanned   = "banned"
)

// Application is a submitted membership questionnaire awaiting or having
// received a decision. Answers are keyed by form step.
type Application struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicantID int64             `gorm:"not null;index" json:"applicant_id"`
	Handle      string            `gorm:"size:255" json:"handle"`
	Answers     datatypes.JSONMap `json:"answers"`
	PhotoRef    string            `gorm:"size:255" json:"photo_ref"`
	Status      string            `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewerID  *int64            `json:"reviewer_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
