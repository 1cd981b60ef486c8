package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameBytes  = 32 * 1024
	sendBufferSize = 64
)

// EventHandler processes decoded incoming events for a client. The socket
// controller implements it.
type EventHandler interface {
	HandleEvent(c *Client, env Envelope)
}

type Client struct {
	ID      string
	session *Session

	conn    *websocket.Conn
	send    chan *OutEvent
	limiter *rate.Limiter

	roomsMu sync.RWMutex
	rooms   map[string]bool

	closeOnce sync.Once
	closed    chan struct{}
	writeMu   sync.Mutex
}

func NewClient(conn *websocket.Conn, session *Session, messagesPerSecond float64, burst int) *Client {
	return &Client{
		ID:      session.ClientID,
		session: session,
		conn:    conn,
		send:    make(chan *OutEvent, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
		rooms:   make(map[string]bool),
		closed:  make(chan struct{}),
	}
}

// Session returns the immutable authentication binding made at handshake.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) AllowMessage() bool {
	return c.limiter.Allow()
}

// Close tears down the connection. The send channel is never closed so a
// concurrent SendEvent can at worst queue into a drained buffer, never panic.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.writeMu.Unlock()
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Client) trackRoom(roomID string) {
	c.roomsMu.Lock()
	c.rooms[roomID] = true
	c.roomsMu.Unlock()
}

func (c *Client) untrackRoom(roomID string) {
	c.roomsMu.Lock()
	delete(c.rooms, roomID)
	c.roomsMu.Unlock()
}

// Rooms returns a snapshot of the rooms this client is subscribed to.
func (c *Client) Rooms() []string {
	c.roomsMu.RLock()
	defer c.roomsMu.RUnlock()
	rooms := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		rooms = append(rooms, id)
	}
	return rooms
}

// CurrentRoom returns the sole subscribed room, or "" when the client is in
// zero or several rooms and an explicit room is required.
func (c *Client) CurrentRoom() string {
	c.roomsMu.RLock()
	defer c.roomsMu.RUnlock()
	if len(c.rooms) != 1 {
		return ""
	}
	for id := range c.rooms {
		return id
	}
	return ""
}

// SendEvent queues an event without blocking. It reports false when the
// client buffer is full and the event was dropped.
func (c *Client) SendEvent(event string, data any) bool {
	if c.IsClosed() {
		return false
	}
	select {
	case c.send <- &OutEvent{Event: event, Data: data}:
		return true
	default:
		return false
	}
}

func (c *Client) SendError(message string) {
	c.SendEvent(EventError, ErrorOut{Message: message})
}

// ReadPump decodes incoming frames and hands them to the handler. It exits
// on read error or close, unregistering the client from the core.
func (c *Client) ReadPump(core *Core, handler EventHandler) {
	defer func() {
		core.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(raw) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// A malformed event reports back to the sender without
			// disconnecting it.
			c.SendError("malformed event")
			continue
		}

		handler.HandleEvent(c, env)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case evt := <-c.send:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteJSON(evt)
			c.writeMu.Unlock()
			if err != nil {
				return
			}

		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
