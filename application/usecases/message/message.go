package message

import (
	"context"
	"strings"
	"time"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/domain/scope"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxMessageLength = 2000

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Broadcast is the payload published to every current subscriber of a room.
type Broadcast struct {
	ID          string         `json:"id"`
	RoomID      string         `json:"roomId"`
	Username    string         `json:"username"`
	Message     string         `json:"message"`
	Timestamp   time.Time      `json:"timestamp"`
	RecipientID *string        `json:"recipientId"`
	UserID      *string        `json:"userId"`
	AuthType    model.AuthType `json:"authType"`
}

// Broadcaster is the narrow fan-out capability the router needs. The
// websocket hub implements it; depending on the abstraction keeps the router
// free of a cycle with the hub.
type Broadcaster interface {
	BroadcastMessage(b *Broadcast) error
}

// MembershipChecker gates senders on their current committed room status.
type MembershipChecker interface {
	CanSend(ctx context.Context, roomID, identityID string) (bool, error)
}

type MessageUseCase interface {
	Send(ctx context.Context, roomID string, principal *model.Principal, content string, recipientID *string) (*model.Message, error)
	History(ctx context.Context, roomID string, principal *model.Principal, filter repository.MessageFilter) ([]*model.Message, error)
}

type messageUseCase struct {
	messages    repository.MessageRepository
	rooms       repository.RoomRepository
	membership  MembershipChecker
	broadcaster Broadcaster
	logger      *logger.Logger
}

func NewMessageUseCase(
	messages repository.MessageRepository,
	rooms repository.RoomRepository,
	membership MembershipChecker,
	broadcaster Broadcaster,
	logger *logger.Logger,
) MessageUseCase {
	return &messageUseCase{
		messages:    messages,
		rooms:       rooms,
		membership:  membership,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (uc *messageUseCase) Send(ctx context.Context, roomID string, principal *model.Principal, content string, recipientID *string) (*model.Message, error) {
	if principal == nil {
		return nil, apperrors.Authentication("authentication required to send messages")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("message content cannot be empty")
	}
	if len(content) > maxMessageLength {
		return nil, apperrors.Validation("message content too long")
	}

	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, apperrors.NotFound("room is deactivated")
	}

	if err := uc.authorizeRoomAccess(room, principal); err != nil {
		return nil, err
	}

	// Membership gating applies to every principal bound to an identity.
	// Bare service credentials act as a system voice and are exempt.
	if principal.HasIdentity() {
		// The status read is the current committed value; a ban landing
		// after this check but before persist wins on the next send.
		allowed, err := uc.membership.CanSend(ctx, roomID, *principal.IdentityID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			uc.logger.Warn("send rejected by membership status",
				zap.String("roomID", roomID),
				zap.String("identityID", *principal.IdentityID))
			return nil, apperrors.Authorization("you are not an active member of this room")
		}
	}

	msg := &model.Message{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		SenderID:    principal.IdentityID,
		RecipientID: recipientID,
		SenderName:  principal.DisplayName,
		Content:     content,
		CreatedAt:   time.Now(),
	}

	if err := uc.messages.Create(ctx, msg); err != nil {
		uc.logger.Error("failed to persist message", zap.Error(err), zap.String("roomID", roomID))
		return nil, err
	}

	// Persist then broadcast. A hub failure here leaves the message durably
	// stored but undelivered; clients re-sync history on reconnect, so the
	// gap is tolerated rather than unwound.
	if err := uc.broadcaster.BroadcastMessage(&Broadcast{
		ID:          msg.ID,
		RoomID:      msg.RoomID,
		Username:    msg.SenderName,
		Message:     msg.Content,
		Timestamp:   msg.CreatedAt,
		RecipientID: msg.RecipientID,
		UserID:      msg.SenderID,
		AuthType:    principal.AuthType,
	}); err != nil {
		uc.logger.Warn("message persisted but broadcast failed",
			zap.Error(err),
			zap.String("messageID", msg.ID),
			zap.String("roomID", roomID))
	}

	return msg, nil
}

func (uc *messageUseCase) History(ctx context.Context, roomID string, principal *model.Principal, filter repository.MessageFilter) ([]*model.Message, error) {
	if principal == nil {
		return nil, apperrors.Authentication("authentication required to read messages")
	}

	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := uc.authorizeRoomAccess(room, principal); err != nil {
		return nil, err
	}

	// Reads follow the subscribe rule: private rooms require an active
	// membership, public rooms are readable by any identity.
	if principal.HasIdentity() {
		allowed, err := uc.membership.CanSend(ctx, roomID, *principal.IdentityID)
		if err != nil {
			return nil, err
		}
		if !allowed && room.Visibility != model.RoomVisibilityPublic {
			uc.logger.Warn("history read rejected by membership status",
				zap.String("roomID", roomID),
				zap.String("identityID", *principal.IdentityID))
			return nil, apperrors.Authorization("membership required to read this room")
		}
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	// Visibility follows the caller, never the request: identities see the
	// broadcast stream plus rows they sent or were targeted by, while bare
	// service credentials that passed the access check see the full stream.
	filter.IncludeRecipients = true
	if principal.HasIdentity() {
		filter.UserID = *principal.IdentityID
	} else {
		filter.UserID = ""
	}

	return uc.messages.GetByRoom(ctx, roomID, filter)
}

// authorizeRoomAccess applies the two-tier trust model: user-path principals
// always pass, service credentials need allow-all-chats or manage-own-chats
// over a room their owning identity created.
func (uc *messageUseCase) authorizeRoomAccess(room *model.Room, principal *model.Principal) error {
	if principal.IsUser() {
		return nil
	}

	if scope.Has(principal.Scopes, scope.AllowAllChats) {
		return nil
	}
	if scope.Has(principal.Scopes, scope.ManageOwnChats) &&
		principal.HasIdentity() && room.CreatorID == *principal.IdentityID {
		return nil
	}

	uc.logger.Warn("service credential lacks room access",
		zap.String("roomID", room.ID))
	return apperrors.Authorization("credential does not grant access to this room")
}
