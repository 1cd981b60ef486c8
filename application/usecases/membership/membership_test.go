package membership

import (
	"context"
	"sync"
	"testing"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKey struct{ roomID, identityID string }

// memMembershipRepo emulates the composite primary key: a second insert for
// the same (room, identity) pair surfaces a conflict, exactly like the
// database constraint.
type memMembershipRepo struct {
	mu      sync.Mutex
	rows    map[memKey]*model.Membership
	inserts int
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{rows: make(map[memKey]*model.Membership)}
}

func (r *memMembershipRepo) Insert(_ context.Context, m *model.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memKey{m.RoomID, m.IdentityID}
	if _, ok := r.rows[key]; ok {
		return apperrors.Conflict("membership already exists")
	}
	cp := *m
	r.rows[key] = &cp
	r.inserts++
	return nil
}

func (r *memMembershipRepo) Get(_ context.Context, roomID, identityID string) (*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[memKey{roomID, identityID}]
	if !ok {
		return nil, apperrors.NotFound("membership not found")
	}
	cp := *row
	return &cp, nil
}

func (r *memMembershipRepo) SetStatus(_ context.Context, roomID, identityID string, status model.MembershipStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[memKey{roomID, identityID}]
	if !ok {
		return apperrors.NotFound("membership not found")
	}
	row.Status = status
	return nil
}

func (r *memMembershipRepo) Delete(_ context.Context, roomID, identityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, memKey{roomID, identityID})
	return nil
}

func (r *memMembershipRepo) ListByRoom(_ context.Context, roomID string) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for key, row := range r.rows {
		if key.roomID == roomID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) ListByIdentity(_ context.Context, identityID string) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for key, row := range r.rows {
		if key.identityID == identityID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ repository.MembershipRepository = (*memMembershipRepo)(nil)

type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newMemRoomRepo(rooms ...*model.Room) *memRoomRepo {
	r := &memRoomRepo{rooms: make(map[string]*model.Room)}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}
	return r
}

func (r *memRoomRepo) Create(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
	return nil
}

func (r *memRoomRepo) Update(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
	return nil
}

func (r *memRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, apperrors.NotFound("room not found")
	}
	cp := *room
	return &cp, nil
}

func (r *memRoomRepo) GetByName(_ context.Context, name string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.Name == name {
			cp := *room
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("room not found")
}

func (r *memRoomRepo) List(_ context.Context) ([]*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		cp := *room
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRoomRepo) ListByCreator(_ context.Context, creatorID string) ([]*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Room
	for _, room := range r.rooms {
		if room.CreatorID == creatorID {
			cp := *room
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRoomRepo) ListByIDs(_ context.Context, ids []string) ([]*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Room
	for _, id := range ids {
		if room, ok := r.rooms[id]; ok {
			cp := *room
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ repository.RoomRepository = (*memRoomRepo)(nil)

type recordingNotifier struct {
	mu     sync.Mutex
	joined []string
	left   []string
	banned []string
}

func (n *recordingNotifier) NotifyUserJoined(roomID, identityID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.joined = append(n.joined, identityID)
}

func (n *recordingNotifier) NotifyUserLeft(roomID, identityID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.left = append(n.left, identityID)
}

func (n *recordingNotifier) NotifyUserBanned(roomID, identityID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.banned = append(n.banned, identityID)
}

func testRoom() *model.Room {
	return &model.Room{
		ID:        "room-1",
		Name:      "general",
		Type:      model.RoomTypeNormal,
		CreatorID: "owner-1",
		Active:    true,
	}
}

func newTestUseCase(memberships *memMembershipRepo, rooms *memRoomRepo, rejoinLiftsBan bool) (MembershipUseCase, *recordingNotifier) {
	notifier := &recordingNotifier{}
	cfg := &config.Config{Membership: config.MembershipConfig{RejoinLiftsBan: rejoinLiftsBan}}
	uc := NewMembershipUseCase(memberships, rooms, notifier, cfg, logger.NewNop())
	return uc, notifier
}

func TestJoinCreatesActiveMembership(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, notifier := newTestUseCase(repo, newMemRoomRepo(testRoom()), false)

	member, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusActive, member.Status)
	assert.False(t, member.JoinedAt.IsZero(), "join stamps the membership row")
	assert.Equal(t, []string{"user-1"}, notifier.joined)
}

func TestJoinIsIdempotent(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, _ := newTestUseCase(repo, newMemRoomRepo(testRoom()), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	member, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, model.MembershipStatusActive, member.Status)
	assert.Equal(t, 1, repo.inserts)
}

func TestJoinDeactivatedRoom(t *testing.T) {
	room := testRoom()
	room.Active = false
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(room), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBanInDeactivatedRoom(t *testing.T) {
	room := testRoom()
	room.Active = false
	repo := newMemMembershipRepo()
	uc, notifier := newTestUseCase(repo, newMemRoomRepo(room), false)

	// A dead room takes no new membership rows, pre-emptive bans included.
	_, err := uc.Ban(context.Background(), "room-1", "user-9", "owner-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	members, err := uc.ListMembers(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.Empty(t, notifier.banned)
}

func TestBannedJoinRejectedByDefault(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, _ := newTestUseCase(repo, newMemRoomRepo(testRoom()), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	_, err = uc.Ban(context.Background(), "room-1", "user-1", "owner-1")
	require.NoError(t, err)

	_, err = uc.Join(context.Background(), "room-1", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))

	// The row survives the rejected rejoin.
	row, err := repo.Get(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusBanned, row.Status)
}

func TestRejoinLiftsBanWhenEnabled(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, _ := newTestUseCase(repo, newMemRoomRepo(testRoom()), true)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	_, err = uc.Ban(context.Background(), "room-1", "user-1", "owner-1")
	require.NoError(t, err)

	member, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusActive, member.Status)
}

func TestBanRequiresCreator(t *testing.T) {
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(testRoom()), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)

	_, err = uc.Ban(context.Background(), "room-1", "user-1", "user-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestCreatorCannotBeBanned(t *testing.T) {
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(testRoom()), false)

	_, err := uc.Ban(context.Background(), "room-1", "owner-1", "owner-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestPreemptiveBanOfNonMember(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, notifier := newTestUseCase(repo, newMemRoomRepo(testRoom()), false)

	member, err := uc.Ban(context.Background(), "room-1", "user-9", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusBanned, member.Status)
	assert.Equal(t, []string{"user-9"}, notifier.banned)

	// The pre-banned identity cannot join later.
	_, err = uc.Join(context.Background(), "room-1", "user-9")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestUnban(t *testing.T) {
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(testRoom()), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	_, err = uc.Ban(context.Background(), "room-1", "user-1", "owner-1")
	require.NoError(t, err)

	member, err := uc.Unban(context.Background(), "room-1", "user-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusActive, member.Status)

	ok, err := uc.CanSend(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnbanActiveMemberConflicts(t *testing.T) {
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(testRoom()), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)

	_, err = uc.Unban(context.Background(), "room-1", "user-1", "owner-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUnbanRequiresCreator(t *testing.T) {
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(testRoom()), false)

	_, err := uc.Unban(context.Background(), "room-1", "user-1", "user-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestCanSend(t *testing.T) {
	uc, _ := newTestUseCase(newMemMembershipRepo(), newMemRoomRepo(testRoom()), false)

	ok, err := uc.CanSend(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "non-member cannot send")

	_, err = uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)

	ok, err = uc.CanSend(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = uc.Ban(context.Background(), "room-1", "user-1", "owner-1")
	require.NoError(t, err)

	ok, err = uc.CanSend(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "ban is visible to the next send")
}

func TestLeaveErasesBanRecord(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, _ := newTestUseCase(repo, newMemRoomRepo(testRoom()), false)

	_, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	_, err = uc.Ban(context.Background(), "room-1", "user-1", "owner-1")
	require.NoError(t, err)

	require.NoError(t, uc.Leave(context.Background(), "room-1", "user-1"))

	_, err = repo.Get(context.Background(), "room-1", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// With the ban record gone, a fresh join succeeds.
	member, err := uc.Join(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusActive, member.Status)
}

func TestConcurrentJoinsProduceSingleRow(t *testing.T) {
	repo := newMemMembershipRepo()
	uc, _ := newTestUseCase(repo, newMemRoomRepo(testRoom()), false)

	const goroutines = 32
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Join(context.Background(), "room-1", "user-1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "join %d failed", i)
	}
	assert.Equal(t, 1, repo.inserts, "exactly one insert wins")

	members, err := uc.ListMembers(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestListRoomsForUnionsOwnedAndJoined(t *testing.T) {
	owned := &model.Room{ID: "room-owned", Name: "mine", CreatorID: "user-1", Active: true}
	joined := &model.Room{ID: "room-joined", Name: "theirs", CreatorID: "other", Active: true}
	rooms := newMemRoomRepo(owned, joined)
	uc, _ := newTestUseCase(newMemMembershipRepo(), rooms, false)

	_, err := uc.Join(context.Background(), "room-joined", "user-1")
	require.NoError(t, err)
	// Also a member of the room they own; the union must not duplicate it.
	_, err = uc.Join(context.Background(), "room-owned", "user-1")
	require.NoError(t, err)

	result, err := uc.ListRoomsFor(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, result, 2)

	ids := []string{result[0].ID, result[1].ID}
	assert.ElementsMatch(t, []string{"room-owned", "room-joined"}, ids)
}
