package models

import "time"

// RosterMember is one clan member inside the roster snapshot.
//
// Field provenance: Nickname and Level are externally authoritative and are
// overwritten on every reconciliation. Leader and LastSeen are locally
// authoritative: they are carried over from the previous snapshot unless the
// member is newly observed (then leader=false, lastSeen=now).
type RosterMember struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	SnapshotID uint      `gorm:"not null;index" json:"-"`
	Nickname   string    `gorm:"size:255;not null" json:"nickname"`
	Level      int       `gorm:"not null" json:"level"`
	Leader     bool      `gorm:"not null;default:false" json:"leader"`
	LastSeen   time.Time `gorm:"not null" json:"last_seen"`
}

// RosterSnapshot is the singleton merged view of the external clan roster.
// Exactly one row exists per deployment; reconciliation replaces it in full.
type RosterSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	GuildName string         `gorm:"size:255" json:"guild_name"`
	SourceURL string         `gorm:"size:512" json:"source_url"`
	AvgLevel  float64        `json:"avg_level"`
	Members   []RosterMember `gorm:"foreignKey:SnapshotID" json:"members"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
