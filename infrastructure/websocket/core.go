package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/banterhq/banter/application/usecases/message"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	"go.uber.org/zap"
)

// PresenceTracker mirrors the per-room online set kept in shared storage so
// sibling instances can answer presence queries. The redis registry
// implements it.
type PresenceTracker interface {
	MarkOnline(ctx context.Context, roomID, clientID string) error
	MarkOffline(ctx context.Context, roomID, clientID string) error
}

// Core is the broadcast hub: it owns the live client set, the per-room
// subscription table and every fan-out path. It implements the Broadcaster
// capability the message router depends on and the Notifier capability the
// membership manager depends on, so neither usecase imports this package's
// concrete types back.
type Core struct {
	roomMgr  *RoomManager
	sessions SessionRegistry
	presence PresenceTracker
	metrics  *metrics.Metrics
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	shutdown chan struct{}
	once     sync.Once
}

func NewCore(
	sessions SessionRegistry,
	presence PresenceTracker,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Core {
	return &Core{
		roomMgr:  NewRoomManager(),
		sessions: sessions,
		presence: presence,
		metrics:  metrics,
		logger:   logger,
		clients:  make(map[string]*Client),
		shutdown: make(chan struct{}),
	}
}

func (c *Core) RoomManager() *RoomManager {
	return c.roomMgr
}

func (c *Core) Register(cl *Client) {
	c.mu.Lock()
	c.clients[cl.ID] = cl
	c.mu.Unlock()

	c.sessions.Put(cl.Session())
	c.metrics.ActiveConnections.Inc()
}

func (c *Core) Unregister(cl *Client) {
	c.mu.Lock()
	_, known := c.clients[cl.ID]
	delete(c.clients, cl.ID)
	c.mu.Unlock()

	if !known {
		return
	}

	for _, roomID := range cl.Rooms() {
		c.markOffline(roomID, cl.ID)
	}
	c.roomMgr.RemoveEverywhere(cl)
	c.sessions.Remove(cl.ID)
	c.metrics.ActiveConnections.Dec()
	cl.Close()
}

// JoinRoom subscribes the client to a room's fan-out and announces it.
func (c *Core) JoinRoom(cl *Client, roomID string) {
	c.roomMgr.Subscribe(roomID, cl)
	cl.trackRoom(roomID)
	c.markOnline(roomID, cl.ID)

	cl.SendEvent(EventRoomJoined, RoomEventOut{
		RoomID:   roomID,
		UserID:   cl.Session().IdentityID(),
		ClientID: cl.ID,
	})
	c.broadcast(roomID, EventUserJoinedRoom, RoomEventOut{
		RoomID:   roomID,
		UserID:   cl.Session().IdentityID(),
		ClientID: cl.ID,
	})
}

func (c *Core) LeaveRoom(cl *Client, roomID string) {
	c.roomMgr.Unsubscribe(roomID, cl)
	cl.untrackRoom(roomID)
	c.markOffline(roomID, cl.ID)

	c.broadcast(roomID, EventUserLeftRoom, RoomEventOut{
		RoomID:   roomID,
		UserID:   cl.Session().IdentityID(),
		ClientID: cl.ID,
	})
}

// BroadcastMessage delivers a routed message to every current subscriber of
// its room. This is the message router's Broadcaster capability.
func (c *Core) BroadcastMessage(b *message.Broadcast) error {
	c.broadcast(b.RoomID, EventMessage, b)
	return nil
}

// NotifyUserJoined implements the membership Notifier for joins that arrive
// through the REST surface rather than a socket subscription.
func (c *Core) NotifyUserJoined(roomID, identityID string) {
	c.broadcast(roomID, EventUserJoinedRoom, RoomEventOut{RoomID: roomID, UserID: identityID})
}

func (c *Core) NotifyUserLeft(roomID, identityID string) {
	c.broadcast(roomID, EventUserLeftRoom, RoomEventOut{RoomID: roomID, UserID: identityID})
}

func (c *Core) NotifyUserBanned(roomID, identityID string) {
	c.broadcast(roomID, EventUserBanned, BanEventOut{UserID: identityID, RoomID: roomID})
}

func (c *Core) broadcast(roomID, event string, data any) {
	for _, cl := range c.roomMgr.Snapshot(roomID) {
		if cl.IsClosed() {
			continue
		}
		if !cl.SendEvent(event, data) {
			c.metrics.MessagesDropped.Inc()
			c.logger.Warn("client buffer full, dropping event",
				zap.String("clientID", cl.ID),
				zap.String("event", event))
		}
	}
	if event == EventMessage {
		c.metrics.MessagesSent.Inc()
	}
}

func (c *Core) markOnline(roomID, clientID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.presence.MarkOnline(ctx, roomID, clientID); err != nil {
		c.logger.Warn("failed to mark presence online", zap.Error(err), zap.String("roomID", roomID))
	}
}

func (c *Core) markOffline(roomID, clientID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.presence.MarkOffline(ctx, roomID, clientID); err != nil {
		c.logger.Warn("failed to mark presence offline", zap.Error(err), zap.String("roomID", roomID))
	}
}

func (c *Core) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)
		c.roomMgr.DisconnectAll()

		c.mu.Lock()
		c.clients = make(map[string]*Client)
		c.mu.Unlock()
	})
}
