package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/banterhq/banter/application/usecases/membership"
	messageUseCase "github.com/banterhq/banter/application/usecases/message"
	roomUseCase "github.com/banterhq/banter/application/usecases/room"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventTimeout = 5 * time.Second

	messagesPerSecond = 5
	messageBurst      = 10
)

type WebSocketController interface {
	HandleConnection(ctx *gin.Context)
	HandleEvent(cl *websocket.Client, env websocket.Envelope)
}

type webSocketController struct {
	rooms         roomUseCase.RoomUseCase
	memberships   membership.MembershipUseCase
	messages      messageUseCase.MessageUseCase
	authenticator *websocket.Authenticator
	core          *websocket.Core
	logger        *logger.Logger
}

func NewWebSocketController(
	rooms roomUseCase.RoomUseCase,
	memberships membership.MembershipUseCase,
	messages messageUseCase.MessageUseCase,
	authenticator *websocket.Authenticator,
	core *websocket.Core,
	logger *logger.Logger,
) WebSocketController {
	return &webSocketController{
		rooms:         rooms,
		memberships:   memberships,
		messages:      messages,
		authenticator: authenticator,
		core:          core,
		logger:        logger,
	}
}

func (c *webSocketController) HandleConnection(ctx *gin.Context) {
	clientID := uuid.NewString()

	session, err := c.authenticator.Authenticate(ctx.Request.Context(), clientID, ctx.Request.URL.Query())
	if err != nil {
		ctx.JSON(apperrors.HTTPStatus(err), gin.H{
			"error":   "invalid_request",
			"message": apperrors.Public(err),
		})
		return
	}

	conn, err := c.core.RoomManager().Upgrade(ctx.Writer, ctx.Request)
	if err != nil {
		c.logger.Error("websocket upgrade failed",
			zap.String("clientID", clientID),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "upgrade_failed",
			"message": "failed to upgrade connection",
		})
		return
	}

	client := websocket.NewClient(conn, session, messagesPerSecond, messageBurst)
	c.core.Register(client)

	c.logger.Info("websocket connection established",
		zap.String("clientID", clientID),
		zap.Bool("authenticated", session.Authenticated()),
	)

	go client.WritePump()
	go client.ReadPump(c.core, c)
}

func (c *webSocketController) HandleEvent(cl *websocket.Client, env websocket.Envelope) {
	switch env.Event {
	case websocket.EventMessage:
		c.handleMessage(cl, env.Data)
	case websocket.EventJoinRoom:
		c.handleJoinRoom(cl, env.Data)
	case websocket.EventJoinRoomMember:
		c.handleJoinRoomMember(cl, env.Data)
	case websocket.EventLeaveRoom:
		c.handleLeaveRoom(cl, env.Data)
	default:
		cl.SendError("unknown event: " + env.Event)
	}
}

func (c *webSocketController) handleMessage(cl *websocket.Client, data json.RawMessage) {
	if !cl.AllowMessage() {
		cl.SendError("rate limit exceeded, slow down")
		return
	}

	var in websocket.MessageIn
	if err := json.Unmarshal(data, &in); err != nil {
		cl.SendError("malformed message payload")
		return
	}

	roomID := in.Room
	if roomID == "" {
		roomID = cl.CurrentRoom()
	}
	if roomID == "" {
		cl.SendError("no room specified and none joined")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if _, err := c.messages.Send(ctx, roomID, cl.Session().Principal, in.Body(), in.RecipientID); err != nil {
		cl.SendError(apperrors.Public(err))
	}
}

func (c *webSocketController) handleJoinRoom(cl *websocket.Client, data json.RawMessage) {
	var in websocket.RoomIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" {
		cl.SendError("malformed join payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	room, err := c.rooms.GetActive(ctx, in.Room)
	if err != nil {
		cl.SendError(apperrors.Public(err))
		return
	}

	if err := c.authorizeSubscribe(ctx, cl, room); err != nil {
		cl.SendError(apperrors.Public(err))
		return
	}

	c.core.JoinRoom(cl, room.ID)
}

// handleJoinRoomMember is join-room plus membership enrollment: the socket
// equivalent of a REST join followed by a subscribe.
func (c *webSocketController) handleJoinRoomMember(cl *websocket.Client, data json.RawMessage) {
	var in websocket.RoomMemberIn
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" {
		cl.SendError("malformed join payload")
		return
	}

	session := cl.Session()
	if !session.Authenticated() || !session.Principal.IsUser() {
		cl.SendError("joining as a member requires a user token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if _, err := c.memberships.Join(ctx, in.RoomID, session.IdentityID()); err != nil {
		cl.SendError(apperrors.Public(err))
		return
	}

	c.core.JoinRoom(cl, in.RoomID)
}

func (c *webSocketController) handleLeaveRoom(cl *websocket.Client, data json.RawMessage) {
	var in websocket.RoomIn
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" {
		cl.SendError("malformed leave payload")
		return
	}

	c.core.LeaveRoom(cl, in.Room)
}

// authorizeSubscribe gates a read subscription. Private rooms require an
// active membership; public rooms are readable by anyone, banned or not,
// since bans block sending rather than listening.
func (c *webSocketController) authorizeSubscribe(ctx context.Context, cl *websocket.Client, room *model.Room) error {
	session := cl.Session()

	if identityID := session.IdentityID(); identityID != "" {
		ok, err := c.memberships.CanSend(ctx, room.ID, identityID)
		if err != nil {
			return err
		}
		if !ok && room.Visibility != model.RoomVisibilityPublic {
			return apperrors.Authorization("membership required to subscribe to this room")
		}
		return nil
	}

	if session.Authenticated() {
		// Service credentials subscribe to any active room; scope checks
		// apply when they send, not when they listen.
		return nil
	}

	if room.Visibility != model.RoomVisibilityPublic {
		return apperrors.Authorization("anonymous connections may only subscribe to public rooms")
	}

	return nil
}
