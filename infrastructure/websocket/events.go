package websocket

import "encoding/json"

// Socket event names. Incoming events arrive as an Envelope; outgoing events
// are written as {event, data}.
const (
	EventMessage        = "message"
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventJoinRoomMember = "join-room-member"

	EventRoomJoined     = "room-joined"
	EventUserJoinedRoom = "user-joined-room"
	EventUserLeftRoom   = "user-left-room"
	EventUserBanned     = "user-banned"
	EventError          = "error"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// MessageIn accepts either "message" or "content" for the body; older
// clients used the latter.
type MessageIn struct {
	Message     string  `json:"message"`
	Content     string  `json:"content"`
	Room        string  `json:"room"`
	RecipientID *string `json:"recipientId"`
}

func (m *MessageIn) Body() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Content
}

type RoomIn struct {
	Room string `json:"room"`
}

type RoomMemberIn struct {
	RoomID string `json:"roomId"`
}

type RoomEventOut struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId,omitempty"`
	ClientID string `json:"clientId"`
}

type BanEventOut struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

type ErrorOut struct {
	Message string `json:"message"`
}
