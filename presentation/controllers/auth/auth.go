package auth

import (
	"net/http"

	"github.com/banterhq/banter/application/usecases/identity"
	"github.com/banterhq/banter/application/usecases/token"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/gin-gonic/gin"
)

type AuthController interface {
	Register(ctx *gin.Context)
	Login(ctx *gin.Context)
	Refresh(ctx *gin.Context)
	Logout(ctx *gin.Context)
}

type authController struct {
	identities identity.IdentityUseCase
	tokens     token.TokenUseCase
}

func NewAuthController(identities identity.IdentityUseCase, tokens token.TokenUseCase) AuthController {
	return &authController{
		identities: identities,
		tokens:     tokens,
	}
}

func (c *authController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	created, pair, err := c.identities.Register(ctx.Request.Context(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toAuthResponse(created, pair))
}

func (c *authController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	found, pair, err := c.identities.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toAuthResponse(found, pair))
}

func (c *authController) Refresh(ctx *gin.Context) {
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	access, err := c.tokens.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
	})
}

func (c *authController) Logout(ctx *gin.Context) {
	var req LogoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := c.tokens.RevokeRefreshToken(ctx.Request.Context(), req.RefreshToken); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

func toAuthResponse(id *model.Identity, pair *token.TokenPair) AuthResponse {
	return AuthResponse{
		Identity: IdentityResponse{
			ID:          id.ID,
			Username:    id.Username,
			DisplayName: id.DisplayName,
			CreatedAt:   id.CreatedAt,
		},
		Tokens: TokenResponse{
			AccessToken:  pair.Access,
			RefreshToken: pair.Refresh,
			TokenType:    "Bearer",
		},
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperrors.HTTPStatus(err), ErrorResponse{
		Error:   string(apperrors.KindOf(err)),
		Message: apperrors.Public(err),
	})
}
