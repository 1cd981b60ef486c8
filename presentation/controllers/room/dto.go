package room

import "time"

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Type        string `json:"type" binding:"omitempty,oneof=normal support"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private public"`
}

type RoomResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Visibility  string    `json:"visibility"`
	CreatorID   string    `json:"creator_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	IdentityID string    `json:"identity_id"`
	Status     string    `json:"status"`
	JoinedAt   time.Time `json:"joined_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
