package models

import "time"

// Applicant roles. Banning is a role value, never a row deletion.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleBanned = "banned"
)

// Applicant is a platform user who has interacted with the bot at least once.
// The primary key is the Telegram user id, so no surrogate id is generated.
type Applicant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Handle    string    `gorm:"size:255" json:"handle"`
	Role      string    `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
