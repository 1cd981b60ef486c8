package websocket

import (
	"context"
	"sync"
	"testing"

	"github.com/banterhq/banter/application/usecases/message"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPresence struct {
	mu     sync.Mutex
	online map[string]map[string]bool
}

func newMemPresence() *memPresence {
	return &memPresence{online: make(map[string]map[string]bool)}
}

func (p *memPresence) MarkOnline(_ context.Context, roomID, clientID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online[roomID] == nil {
		p.online[roomID] = make(map[string]bool)
	}
	p.online[roomID][clientID] = true
	return nil
}

func (p *memPresence) MarkOffline(_ context.Context, roomID, clientID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online[roomID], clientID)
	return nil
}

func (p *memPresence) count(roomID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.online[roomID])
}

func newTestCore() (*Core, *memPresence) {
	presence := newMemPresence()
	return NewCore(NewSessionRegistry(), presence, metrics.New(), logger.NewNop()), presence
}

func newTestClient(clientID string) *Client {
	return NewClient(nil, &Session{ClientID: clientID}, 100, 100)
}

func drain(cl *Client) []*OutEvent {
	var out []*OutEvent
	for {
		select {
		case ev := <-cl.send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventNames(events []*OutEvent) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}

func TestRegisterAndUnregister(t *testing.T) {
	core, _ := newTestCore()
	cl := newTestClient("client-1")

	core.Register(cl)
	assert.Equal(t, 1, core.sessions.Len())

	core.Unregister(cl)
	assert.Equal(t, 0, core.sessions.Len())
	assert.True(t, cl.IsClosed())

	// Unregistering twice is a no-op.
	core.Unregister(cl)
}

func TestJoinRoomDeliversEvents(t *testing.T) {
	core, presence := newTestCore()

	first := newTestClient("client-1")
	second := newTestClient("client-2")
	core.Register(first)
	core.Register(second)

	core.JoinRoom(first, "room-1")
	core.JoinRoom(second, "room-1")

	assert.Equal(t, 2, presence.count("room-1"))
	assert.Equal(t, 2, core.roomMgr.SubscriberCount("room-1"))

	// The first client saw its own room-joined plus both join broadcasts.
	names := eventNames(drain(first))
	assert.Contains(t, names, EventRoomJoined)
	assert.Contains(t, names, EventUserJoinedRoom)
}

func TestBroadcastMessageFansOutToRoomOnly(t *testing.T) {
	core, _ := newTestCore()

	inRoom := newTestClient("client-1")
	elsewhere := newTestClient("client-2")
	core.Register(inRoom)
	core.Register(elsewhere)
	core.JoinRoom(inRoom, "room-1")
	core.JoinRoom(elsewhere, "room-2")
	drain(inRoom)
	drain(elsewhere)

	require.NoError(t, core.BroadcastMessage(&message.Broadcast{ID: "m1", RoomID: "room-1", Message: "hello"}))

	events := drain(inRoom)
	require.Len(t, events, 1)
	assert.Equal(t, EventMessage, events[0].Event)

	assert.Empty(t, drain(elsewhere), "clients outside the room receive nothing")
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	core, _ := newTestCore()

	cl := newTestClient("client-1")
	core.Register(cl)
	core.JoinRoom(cl, "room-1")

	for i := 0; i < sendBufferSize*2; i++ {
		require.NoError(t, core.BroadcastMessage(&message.Broadcast{ID: "m", RoomID: "room-1"}))
	}

	// The buffer holds at most its capacity; the rest were dropped without
	// blocking the broadcast path.
	assert.LessOrEqual(t, len(drain(cl)), sendBufferSize)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	core, presence := newTestCore()

	cl := newTestClient("client-1")
	core.Register(cl)
	core.JoinRoom(cl, "room-1")
	core.LeaveRoom(cl, "room-1")
	drain(cl)

	require.NoError(t, core.BroadcastMessage(&message.Broadcast{ID: "m1", RoomID: "room-1"}))
	assert.Empty(t, drain(cl))
	assert.Equal(t, 0, presence.count("room-1"))
}

func TestUnregisterCleansUpRooms(t *testing.T) {
	core, presence := newTestCore()

	cl := newTestClient("client-1")
	core.Register(cl)
	core.JoinRoom(cl, "room-1")
	core.JoinRoom(cl, "room-2")

	core.Unregister(cl)

	assert.Equal(t, 0, core.roomMgr.SubscriberCount("room-1"))
	assert.Equal(t, 0, core.roomMgr.SubscriberCount("room-2"))
	assert.Equal(t, 0, presence.count("room-1"))
	assert.Equal(t, 0, presence.count("room-2"))
}

func TestMembershipNotificationsReachSubscribers(t *testing.T) {
	core, _ := newTestCore()

	cl := newTestClient("client-1")
	core.Register(cl)
	core.JoinRoom(cl, "room-1")
	drain(cl)

	core.NotifyUserJoined("room-1", "identity-2")
	core.NotifyUserBanned("room-1", "identity-3")
	core.NotifyUserLeft("room-1", "identity-2")

	names := eventNames(drain(cl))
	assert.Equal(t, []string{EventUserJoinedRoom, EventUserBanned, EventUserLeftRoom}, names)
}

func TestShutdownDisconnectsEveryone(t *testing.T) {
	core, _ := newTestCore()

	cl := newTestClient("client-1")
	core.Register(cl)
	core.JoinRoom(cl, "room-1")

	core.Shutdown()
	core.Shutdown() // idempotent

	assert.True(t, cl.IsClosed())
	assert.Equal(t, 0, core.roomMgr.SubscriberCount("room-1"))
}
