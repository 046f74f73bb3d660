package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote choices.
const (
	VoteYes = "yes"
	VoteNo  = "no"
)

// Vote is one voter's current ballot on one application. The composite
// primary key enforces at most one active vote per voter per application;
// switching sides is an update, not a second row.
type Vote struct {
	ApplicationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"application_id"`
	VoterID       int64     `gorm:"primaryKey;autoIncrement:false" json:"voter_id"`
	Choice        string    `gorm:"size:3;not null" json:"choice"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
