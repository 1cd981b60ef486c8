package credential

import (
	"net/http"
	"time"

	"github.com/banterhq/banter/application/usecases/token"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type CredentialController interface {
	Issue(ctx *gin.Context)
	List(ctx *gin.Context)
	Revoke(ctx *gin.Context)
}

type credentialController struct {
	tokens token.TokenUseCase
}

func NewCredentialController(tokens token.TokenUseCase) CredentialController {
	return &credentialController{
		tokens: tokens,
	}
}

func (c *credentialController) Issue(ctx *gin.Context) {
	var req IssueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	principal, _ := middlewares.GetPrincipal(ctx)

	var ttl *time.Duration
	if req.TTLHours > 0 {
		d := time.Duration(req.TTLHours) * time.Hour
		ttl = &d
	}

	row, apiKey, err := c.tokens.IssueServiceCredential(ctx.Request.Context(), principal.IdentityID, req.Name, req.Scopes, ttl)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, IssuedCredentialResponse{
		Credential: toCredentialResponse(row),
		APIKey:     apiKey,
	})
}

func (c *credentialController) List(ctx *gin.Context) {
	principal, _ := middlewares.GetPrincipal(ctx)

	rows, err := c.tokens.ListCredentials(ctx.Request.Context(), *principal.IdentityID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	out := make([]CredentialResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCredentialResponse(row))
	}

	ctx.JSON(http.StatusOK, gin.H{"credentials": out})
}

func (c *credentialController) Revoke(ctx *gin.Context) {
	credentialID := ctx.Param("id")
	if credentialID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "credential ID is required",
		})
		return
	}

	principal, _ := middlewares.GetPrincipal(ctx)

	if err := c.tokens.RevokeCredential(ctx.Request.Context(), credentialID, *principal.IdentityID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{Message: "credential revoked"})
}

func toCredentialResponse(row *model.Credential) CredentialResponse {
	return CredentialResponse{
		ID:         row.ID,
		Name:       row.Name,
		Scopes:     row.ScopeList(),
		Active:     row.Active,
		ExpiresAt:  row.ExpiresAt,
		CreatedAt:  row.CreatedAt,
		LastUsedAt: row.LastUsedAt,
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperrors.HTTPStatus(err), ErrorResponse{
		Error:   string(apperrors.KindOf(err)),
		Message: apperrors.Public(err),
	})
}
