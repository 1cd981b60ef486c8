package model

import "time"

// Message is immutable once persisted. SenderID is nil when the author is a
// bare service credential with no bound identity; SenderName always records
// the display name at send time. RecipientID is only meaningful in support
// rooms and is stored verbatim without server-side interpretation.
type Message struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID      string    `gorm:"size:36;not null;index:idx_messages_room_created" json:"roomId"`
	SenderID    *string   `gorm:"size:36;index" json:"senderId"`
	RecipientID *string   `gorm:"size:36;index" json:"recipientId"`
	SenderName  string    `gorm:"size:128;not null" json:"senderName"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `gorm:"index:idx_messages_room_created" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
