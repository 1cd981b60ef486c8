package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RoomManager tracks which clients are subscribed to which rooms. It is
// purely a delivery structure; membership authorization lives elsewhere.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]map[string]*Client)}
}

func (rm *RoomManager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

func (rm *RoomManager) Subscribe(roomID string, cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	clients, ok := rm.rooms[roomID]
	if !ok {
		clients = make(map[string]*Client)
		rm.rooms[roomID] = clients
	}
	clients[cl.ID] = cl
}

func (rm *RoomManager) Unsubscribe(roomID string, cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	clients, ok := rm.rooms[roomID]
	if !ok {
		return
	}
	delete(clients, cl.ID)
	if len(clients) == 0 {
		delete(rm.rooms, roomID)
	}
}

// RemoveEverywhere drops the client from every room it is subscribed to.
func (rm *RoomManager) RemoveEverywhere(cl *Client) {
	for _, roomID := range cl.Rooms() {
		rm.Unsubscribe(roomID, cl)
	}
}

// Snapshot returns the current subscribers of a room. Taking a copy keeps
// fan-out from holding the lock while writing to client buffers.
func (rm *RoomManager) Snapshot(roomID string) []*Client {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	clients := make([]*Client, 0, len(rm.rooms[roomID]))
	for _, cl := range rm.rooms[roomID] {
		clients = append(clients, cl)
	}
	return clients
}

func (rm *RoomManager) SubscriberCount(roomID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms[roomID])
}

func (rm *RoomManager) DisconnectAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, clients := range rm.rooms {
		for _, cl := range clients {
			cl.Close()
		}
	}
	rm.rooms = make(map[string]map[string]*Client)
}
