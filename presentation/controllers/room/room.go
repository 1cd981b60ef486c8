package room

import (
	"net/http"

	"github.com/banterhq/banter/application/usecases/membership"
	"github.com/banterhq/banter/application/usecases/room"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type RoomController interface {
	CreateRoom(ctx *gin.Context)
	GetRoom(ctx *gin.Context)
	ListRooms(ctx *gin.Context)
	ListMyRooms(ctx *gin.Context)
	DeactivateRoom(ctx *gin.Context)
	JoinRoom(ctx *gin.Context)
	LeaveRoom(ctx *gin.Context)
	BanMember(ctx *gin.Context)
	UnbanMember(ctx *gin.Context)
	ListMembers(ctx *gin.Context)
}

type roomController struct {
	rooms       room.RoomUseCase
	memberships membership.MembershipUseCase
}

func NewRoomController(rooms room.RoomUseCase, memberships membership.MembershipUseCase) RoomController {
	return &roomController{
		rooms:       rooms,
		memberships: memberships,
	}
}

func (c *roomController) CreateRoom(ctx *gin.Context) {
	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	principal, _ := middlewares.GetPrincipal(ctx)

	roomType := model.RoomTypeNormal
	if req.Type != "" {
		roomType = model.RoomType(req.Type)
	}
	visibility := model.RoomVisibilityPrivate
	if req.Visibility != "" {
		visibility = model.RoomVisibility(req.Visibility)
	}

	created, err := c.rooms.Create(ctx.Request.Context(), *principal.IdentityID, req.Name, req.Description, roomType, visibility)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toRoomResponse(created))
}

func (c *roomController) GetRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")
	if roomID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "room ID is required",
		})
		return
	}

	found, err := c.rooms.GetByID(ctx.Request.Context(), roomID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toRoomResponse(found))
}

func (c *roomController) ListRooms(ctx *gin.Context) {
	rooms, err := c.rooms.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rooms": toRoomResponses(rooms)})
}

func (c *roomController) ListMyRooms(ctx *gin.Context) {
	principal, _ := middlewares.GetPrincipal(ctx)

	rooms, err := c.memberships.ListRoomsFor(ctx.Request.Context(), *principal.IdentityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rooms": toRoomResponses(rooms)})
}

func (c *roomController) DeactivateRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")
	principal, _ := middlewares.GetPrincipal(ctx)

	if err := c.rooms.Deactivate(ctx.Request.Context(), roomID, *principal.IdentityID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{Message: "room deactivated"})
}

func (c *roomController) JoinRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")
	principal, _ := middlewares.GetPrincipal(ctx)

	member, err := c.memberships.Join(ctx.Request.Context(), roomID, *principal.IdentityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toMemberResponse(member))
}

func (c *roomController) LeaveRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")
	principal, _ := middlewares.GetPrincipal(ctx)

	if err := c.memberships.Leave(ctx.Request.Context(), roomID, *principal.IdentityID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{Message: "left room"})
}

func (c *roomController) BanMember(ctx *gin.Context) {
	roomID := ctx.Param("id")
	targetID := ctx.Param("identityId")
	principal, _ := middlewares.GetPrincipal(ctx)

	member, err := c.memberships.Ban(ctx.Request.Context(), roomID, targetID, *principal.IdentityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toMemberResponse(member))
}

func (c *roomController) UnbanMember(ctx *gin.Context) {
	roomID := ctx.Param("id")
	targetID := ctx.Param("identityId")
	principal, _ := middlewares.GetPrincipal(ctx)

	member, err := c.memberships.Unban(ctx.Request.Context(), roomID, targetID, *principal.IdentityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toMemberResponse(member))
}

func (c *roomController) ListMembers(ctx *gin.Context) {
	roomID := ctx.Param("id")

	members, err := c.memberships.ListMembers(ctx.Request.Context(), roomID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}

	ctx.JSON(http.StatusOK, gin.H{"members": out})
}

func toRoomResponse(r *model.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        string(r.Type),
		Visibility:  string(r.Visibility),
		CreatorID:   r.CreatorID,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

func toRoomResponses(rooms []*model.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResponse(r))
	}
	return out
}

func toMemberResponse(m *model.Membership) MemberResponse {
	return MemberResponse{
		IdentityID: m.IdentityID,
		Status:     string(m.Status),
		JoinedAt:   m.JoinedAt,
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperrors.HTTPStatus(err), ErrorResponse{
		Error:   string(apperrors.KindOf(err)),
		Message: apperrors.Public(err),
	})
}
