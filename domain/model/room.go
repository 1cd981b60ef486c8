package model

import "time"

type RoomType string

const (
	RoomTypeNormal RoomType = "normal"
	// RoomTypeSupport rooms carry an optional per-message recipient so staff
	// can reply privately alongside broadcast messages.
	RoomTypeSupport RoomType = "support"
)

type RoomVisibility string

const (
	RoomVisibilityPrivate RoomVisibility = "private"
	RoomVisibilityPublic  RoomVisibility = "public"
)

type Room struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Type        RoomType       `gorm:"size:16;not null;default:'normal'" json:"type"`
	Visibility  RoomVisibility `gorm:"size:16;not null;default:'private'" json:"visibility"`
	CreatorID   string         `gorm:"size:36;not null;index" json:"creatorId"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) IsSupport() bool {
	return r.Type == RoomTypeSupport
}
