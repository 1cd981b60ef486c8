package message

import "time"

type SendMessageRequest struct {
	Content     string  `json:"content" binding:"required,max=2000"`
	RecipientID *string `json:"recipient_id" binding:"omitempty,max=36"`
}

type MessageResponse struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	SenderID    *string   `json:"sender_id"`
	RecipientID *string   `json:"recipient_id,omitempty"`
	SenderName  string    `json:"sender_name"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
