package membership

import (
	"context"
	"time"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"go.uber.org/zap"
)

// Notifier receives membership events for fan-out to room subscribers. The
// websocket hub implements it; the usecase never talks to the hub directly.
type Notifier interface {
	NotifyUserJoined(roomID, identityID string)
	NotifyUserLeft(roomID, identityID string)
	NotifyUserBanned(roomID, identityID string)
}

type MembershipUseCase interface {
	Join(ctx context.Context, roomID, identityID string) (*model.Membership, error)
	Leave(ctx context.Context, roomID, identityID string) error
	Ban(ctx context.Context, roomID, identityID, actingIdentityID string) (*model.Membership, error)
	Unban(ctx context.Context, roomID, identityID, actingIdentityID string) (*model.Membership, error)
	CanSend(ctx context.Context, roomID, identityID string) (bool, error)
	ListMembers(ctx context.Context, roomID string) ([]*model.Membership, error)
	ListRoomsFor(ctx context.Context, identityID string) ([]*model.Room, error)
}

type membershipUseCase struct {
	memberships repository.MembershipRepository
	rooms       repository.RoomRepository
	notifier    Notifier
	locks       *keyedMutex
	// rejoinLiftsBan controls the flagged policy choice: whether a plain
	// join by a banned identity lifts the ban, or only an owner-driven
	// unban can.
	rejoinLiftsBan bool
	logger         *logger.Logger
}

func NewMembershipUseCase(
	memberships repository.MembershipRepository,
	rooms repository.RoomRepository,
	notifier Notifier,
	cfg *config.Config,
	logger *logger.Logger,
) MembershipUseCase {
	return &membershipUseCase{
		memberships:    memberships,
		rooms:          rooms,
		notifier:       notifier,
		locks:          newKeyedMutex(),
		rejoinLiftsBan: cfg.Membership.RejoinLiftsBan,
		logger:         logger,
	}
}

func lockKey(roomID, identityID string) string {
	return roomID + "\x00" + identityID
}

func (uc *membershipUseCase) Join(ctx context.Context, roomID, identityID string) (*model.Membership, error) {
	if roomID == "" || identityID == "" {
		return nil, apperrors.Validation("room ID and identity ID cannot be empty")
	}

	room, err := uc.activeRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	key := lockKey(roomID, identityID)
	uc.locks.lock(key)
	defer uc.locks.unlock(key)

	existing, err := uc.memberships.Get(ctx, roomID, identityID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case model.MembershipStatusActive:
			// Idempotent rejoin.
			return existing, nil
		case model.MembershipStatusBanned:
			if !uc.rejoinLiftsBan {
				uc.logger.Warn("banned identity attempted rejoin",
					zap.String("roomID", roomID),
					zap.String("identityID", identityID))
				return nil, apperrors.Authorization("you are banned from this room")
			}
			if err := uc.memberships.SetStatus(ctx, roomID, identityID, model.MembershipStatusActive); err != nil {
				return nil, err
			}
			existing.Status = model.MembershipStatusActive
			uc.logger.Info("ban lifted by rejoin",
				zap.String("roomID", roomID),
				zap.String("identityID", identityID))
			uc.notifier.NotifyUserJoined(roomID, identityID)
			return existing, nil
		}
	}

	member := &model.Membership{
		RoomID:     roomID,
		IdentityID: identityID,
		Status:     model.MembershipStatusActive,
		JoinedAt:   time.Now(),
	}
	if err := uc.memberships.Insert(ctx, member); err != nil {
		if apperrors.IsConflict(err) {
			// A concurrent join won the insert; honor its row.
			return uc.memberships.Get(ctx, roomID, identityID)
		}
		uc.logger.Error("failed to insert membership", zap.Error(err), zap.String("roomID", roomID))
		return nil, err
	}

	uc.logger.Info("identity joined room",
		zap.String("roomID", room.ID),
		zap.String("identityID", identityID))
	uc.notifier.NotifyUserJoined(roomID, identityID)
	return member, nil
}

func (uc *membershipUseCase) Leave(ctx context.Context, roomID, identityID string) error {
	if roomID == "" || identityID == "" {
		return apperrors.Validation("room ID and identity ID cannot be empty")
	}

	key := lockKey(roomID, identityID)
	uc.locks.lock(key)
	defer uc.locks.unlock(key)

	// Leave deletes the row regardless of current status; a banned member
	// leaving erases the ban record as well.
	if err := uc.memberships.Delete(ctx, roomID, identityID); err != nil {
		uc.logger.Error("failed to delete membership", zap.Error(err), zap.String("roomID", roomID))
		return err
	}

	uc.logger.Info("identity left room",
		zap.String("roomID", roomID),
		zap.String("identityID", identityID))
	uc.notifier.NotifyUserLeft(roomID, identityID)
	return nil
}

func (uc *membershipUseCase) Ban(ctx context.Context, roomID, identityID, actingIdentityID string) (*model.Membership, error) {
	if roomID == "" || identityID == "" || actingIdentityID == "" {
		return nil, apperrors.Validation("room ID, identity ID and acting identity ID cannot be empty")
	}

	// A deactivated room accepts no membership changes; without the gate a
	// pre-emptive ban would insert a fresh row into a dead room.
	room, err := uc.activeRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != actingIdentityID {
		uc.logger.Warn("unauthorized ban attempt",
			zap.String("roomID", roomID),
			zap.String("actingIdentityID", actingIdentityID))
		return nil, apperrors.Authorization("only the room creator can ban members")
	}
	if identityID == room.CreatorID {
		return nil, apperrors.Conflict("the room creator cannot be banned")
	}

	key := lockKey(roomID, identityID)
	uc.locks.lock(key)
	defer uc.locks.unlock(key)

	existing, err := uc.memberships.Get(ctx, roomID, identityID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
		// Pre-emptive ban of a non-member: create the row directly BANNED.
		member := &model.Membership{
			RoomID:     roomID,
			IdentityID: identityID,
			Status:     model.MembershipStatusBanned,
			JoinedAt:   time.Now(),
		}
		if err := uc.memberships.Insert(ctx, member); err != nil {
			if apperrors.IsConflict(err) {
				if err := uc.memberships.SetStatus(ctx, roomID, identityID, model.MembershipStatusBanned); err != nil {
					return nil, err
				}
				return uc.memberships.Get(ctx, roomID, identityID)
			}
			return nil, err
		}
		uc.logger.Info("non-member banned pre-emptively",
			zap.String("roomID", roomID),
			zap.String("identityID", identityID))
		uc.notifier.NotifyUserBanned(roomID, identityID)
		return member, nil
	}

	if err := uc.memberships.SetStatus(ctx, roomID, identityID, model.MembershipStatusBanned); err != nil {
		return nil, err
	}
	existing.Status = model.MembershipStatusBanned

	uc.logger.Info("member banned",
		zap.String("roomID", roomID),
		zap.String("identityID", identityID),
		zap.String("bannedBy", actingIdentityID))
	uc.notifier.NotifyUserBanned(roomID, identityID)
	return existing, nil
}

func (uc *membershipUseCase) Unban(ctx context.Context, roomID, identityID, actingIdentityID string) (*model.Membership, error) {
	if roomID == "" || identityID == "" || actingIdentityID == "" {
		return nil, apperrors.Validation("room ID, identity ID and acting identity ID cannot be empty")
	}

	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != actingIdentityID {
		uc.logger.Warn("unauthorized unban attempt",
			zap.String("roomID", roomID),
			zap.String("actingIdentityID", actingIdentityID))
		return nil, apperrors.Authorization("only the room creator can unban members")
	}

	key := lockKey(roomID, identityID)
	uc.locks.lock(key)
	defer uc.locks.unlock(key)

	existing, err := uc.memberships.Get(ctx, roomID, identityID)
	if err != nil {
		return nil, err
	}
	if existing.Status == model.MembershipStatusActive {
		return nil, apperrors.Conflict("member is not banned")
	}

	if err := uc.memberships.SetStatus(ctx, roomID, identityID, model.MembershipStatusActive); err != nil {
		return nil, err
	}
	existing.Status = model.MembershipStatusActive

	uc.logger.Info("member unbanned",
		zap.String("roomID", roomID),
		zap.String("identityID", identityID),
		zap.String("unbannedBy", actingIdentityID))
	return existing, nil
}

// CanSend reads the current committed status; it never consults a cached
// value, so a ban is visible to the next send immediately.
func (uc *membershipUseCase) CanSend(ctx context.Context, roomID, identityID string) (bool, error) {
	member, err := uc.memberships.Get(ctx, roomID, identityID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return member.Status == model.MembershipStatusActive, nil
}

func (uc *membershipUseCase) ListMembers(ctx context.Context, roomID string) ([]*model.Membership, error) {
	if roomID == "" {
		return nil, apperrors.Validation("room ID cannot be empty")
	}
	return uc.memberships.ListByRoom(ctx, roomID)
}

// ListRoomsFor returns the union of rooms the identity created and rooms
// where it holds any membership row.
func (uc *membershipUseCase) ListRoomsFor(ctx context.Context, identityID string) ([]*model.Room, error) {
	if identityID == "" {
		return nil, apperrors.Validation("identity ID cannot be empty")
	}

	owned, err := uc.rooms.ListByCreator(ctx, identityID)
	if err != nil {
		return nil, err
	}

	memberships, err := uc.memberships.ListByIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(owned))
	rooms := make([]*model.Room, 0, len(owned)+len(memberships))
	for _, r := range owned {
		seen[r.ID] = true
		rooms = append(rooms, r)
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		if !seen[m.RoomID] {
			ids = append(ids, m.RoomID)
		}
	}

	joined, err := uc.rooms.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	rooms = append(rooms, joined...)

	return rooms, nil
}

func (uc *membershipUseCase) activeRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, apperrors.NotFound("room is deactivated")
	}
	return room, nil
}
