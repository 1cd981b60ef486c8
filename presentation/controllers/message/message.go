package message

import (
	"net/http"
	"strconv"

	"github.com/banterhq/banter/application/usecases/message"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type MessageController interface {
	SendMessage(ctx *gin.Context)
	GetHistory(ctx *gin.Context)
}

type messageController struct {
	messages message.MessageUseCase
}

func NewMessageController(messages message.MessageUseCase) MessageController {
	return &messageController{
		messages: messages,
	}
}

func (c *messageController) SendMessage(ctx *gin.Context) {
	roomID := ctx.Param("id")
	if roomID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "room ID is required",
		})
		return
	}

	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	principal, _ := middlewares.GetPrincipal(ctx)

	sent, err := c.messages.Send(ctx.Request.Context(), roomID, principal, req.Content, req.RecipientID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toMessageResponse(sent))
}

func (c *messageController) GetHistory(ctx *gin.Context) {
	roomID := ctx.Param("id")
	if roomID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "room ID is required",
		})
		return
	}

	principal, _ := middlewares.GetPrincipal(ctx)

	filter := repository.MessageFilter{}
	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "limit must be a positive integer",
			})
			return
		}
		filter.Limit = limit
	}

	history, err := c.messages.History(ctx.Request.Context(), roomID, principal, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	out := make([]MessageResponse, 0, len(history))
	for _, m := range history {
		out = append(out, toMessageResponse(m))
	}

	ctx.JSON(http.StatusOK, gin.H{"messages": out})
}

func toMessageResponse(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		RoomID:      m.RoomID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		SenderName:  m.SenderName,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperrors.HTTPStatus(err), ErrorResponse{
		Error:   string(apperrors.KindOf(err)),
		Message: apperrors.Public(err),
	})
}
