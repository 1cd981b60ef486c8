package model

import "time"

// Identity is a principal able to send and receive messages: a registered
// user, or the owner behind a service credential.
type Identity struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	DisplayName  string    `gorm:"size:128;not null" json:"displayName"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Identity) TableName() string {
	return "identities"
}
