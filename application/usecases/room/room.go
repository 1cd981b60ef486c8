package room

import (
	"context"
	"strings"
	"time"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRoomNameLength = 128

type RoomUseCase interface {
	Create(ctx context.Context, creatorID, name, description string, roomType model.RoomType, visibility model.RoomVisibility) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	// GetActive is GetByID plus the gate shared by every mutating path: a
	// deactivated room accepts no new memberships or messages.
	GetActive(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context) ([]*model.Room, error)
	Deactivate(ctx context.Context, id, requesterID string) error
}

type roomUseCase struct {
	repository  repository.RoomRepository
	memberships repository.MembershipRepository
	logger      *logger.Logger
}

func NewRoomUseCase(
	repository repository.RoomRepository,
	memberships repository.MembershipRepository,
	logger *logger.Logger,
) RoomUseCase {
	return &roomUseCase{
		repository:  repository,
		memberships: memberships,
		logger:      logger,
	}
}

func (uc *roomUseCase) Create(ctx context.Context, creatorID, name, description string, roomType model.RoomType, visibility model.RoomVisibility) (*model.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("room name cannot be empty")
	}
	if len(name) > maxRoomNameLength {
		return nil, apperrors.Validation("room name too long")
	}
	if creatorID == "" {
		return nil, apperrors.Validation("creator ID cannot be empty")
	}

	if roomType == "" {
		roomType = model.RoomTypeNormal
	}
	if roomType != model.RoomTypeNormal && roomType != model.RoomTypeSupport {
		return nil, apperrors.Validation("unknown room type")
	}
	if visibility == "" {
		visibility = model.RoomVisibilityPrivate
	}
	if visibility != model.RoomVisibilityPrivate && visibility != model.RoomVisibilityPublic {
		return nil, apperrors.Validation("unknown room visibility")
	}

	room := &model.Room{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Type:        roomType,
		Visibility:  visibility,
		CreatorID:   creatorID,
		Active:      true,
	}

	if err := uc.repository.Create(ctx, room); err != nil {
		uc.logger.Error("failed to create room", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	// The creator joins their own room on creation.
	member := &model.Membership{
		RoomID:     room.ID,
		IdentityID: creatorID,
		Status:     model.MembershipStatusActive,
		JoinedAt:   time.Now(),
	}
	if err := uc.memberships.Insert(ctx, member); err != nil && !apperrors.IsConflict(err) {
		uc.logger.Error("failed to enroll room creator", zap.Error(err), zap.String("roomID", room.ID))
		return nil, err
	}

	uc.logger.Info("room created",
		zap.String("roomID", room.ID),
		zap.String("creatorID", creatorID),
		zap.String("type", string(room.Type)))
	return room, nil
}

func (uc *roomUseCase) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.Validation("room ID cannot be empty")
	}
	return uc.repository.GetByID(ctx, id)
}

func (uc *roomUseCase) GetActive(ctx context.Context, id string) (*model.Room, error) {
	room, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, apperrors.NotFound("room is deactivated")
	}
	return room, nil
}

func (uc *roomUseCase) List(ctx context.Context) ([]*model.Room, error) {
	return uc.repository.List(ctx)
}

func (uc *roomUseCase) Deactivate(ctx context.Context, id, requesterID string) error {
	room, err := uc.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if room.CreatorID != requesterID {
		uc.logger.Warn("unauthorized room deactivation attempt",
			zap.String("roomID", id),
			zap.String("requesterID", requesterID))
		return apperrors.Authorization("only the room creator can deactivate the room")
	}

	room.Active = false
	if err := uc.repository.Update(ctx, room); err != nil {
		uc.logger.Error("failed to deactivate room", zap.Error(err), zap.String("roomID", id))
		return err
	}

	uc.logger.Info("room deactivated", zap.String("roomID", id), zap.String("requesterID", requesterID))
	return nil
}
