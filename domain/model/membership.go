package model

import "time"

type MembershipStatus string

const (
	MembershipStatusActive MembershipStatus = "ACTIVE"
	MembershipStatusBanned MembershipStatus = "BANNED"
)

// Membership is the per-(room, identity) relationship row. Absence of a row
// means the identity holds no membership at all. The composite primary key
// doubles as the storage uniqueness constraint that collapses concurrent
// first joins into a single row.
type Membership struct {
	RoomID     string           `gorm:"primaryKey;size:36" json:"roomId"`
	IdentityID string           `gorm:"primaryKey;size:36" json:"identityId"`
	Status     MembershipStatus `gorm:"size:16;not null;default:'ACTIVE'" json:"status"`
	JoinedAt   time.Time        `json:"joinedAt"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) IsBanned() bool {
	return m.Status == MembershipStatusBanned
}
