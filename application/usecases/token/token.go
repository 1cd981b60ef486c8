package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/domain/scope"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The two failure modes of structural validation are kept distinct so logs
// can tell an expired session from a forged or corrupted token. Both surface
// to callers as AuthenticationError.
var (
	errTokenExpired   = errors.New("token expired")
	errTokenSignature = errors.New("token signature invalid")
	errTokenMalformed = errors.New("token malformed")
)

type TokenUseCase interface {
	IssueUserTokens(ctx context.Context, identity *model.Identity) (*TokenPair, error)
	IssueServiceCredential(ctx context.Context, ownerID *string, name string, scopes []string, ttl *time.Duration) (*model.Credential, string, error)
	Validate(ctx context.Context, tokenStr string) (*model.Principal, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	RevokeCredential(ctx context.Context, credentialID, requestingIdentity string) error
	ListCredentials(ctx context.Context, identityID string) ([]*model.Credential, error)
}

type tokenUseCase struct {
	credentials repository.CredentialRepository
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	logger      *logger.Logger
}

func NewTokenUseCase(
	credentials repository.CredentialRepository,
	cfg *config.Config,
	logger *logger.Logger,
) TokenUseCase {
	return &tokenUseCase{
		credentials: credentials,
		secret:      []byte(cfg.Auth.Secret),
		accessTTL:   cfg.AccessTTL(),
		refreshTTL:  cfg.RefreshTTL(),
		logger:      logger,
	}
}

func (uc *tokenUseCase) IssueUserTokens(ctx context.Context, identity *model.Identity) (*TokenPair, error) {
	access, err := uc.signAccessToken(identity)
	if err != nil {
		return nil, apperrors.Internal("failed to sign access token", err)
	}

	now := time.Now()
	refreshExpiry := now.Add(uc.refreshTTL)
	refreshClaims := Claims{
		Kind:        model.CredentialKindRefresh,
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(uc.secret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign refresh token", err)
	}

	// The refresh row is keyed by the token's signature segment so the
	// revocation check is a single indexed lookup.
	row := &model.Credential{
		ID:             uuid.NewString(),
		IdentityID:     &identity.ID,
		Kind:           model.CredentialKindRefresh,
		TokenSignature: signatureSegment(refresh),
		ExpiresAt:      &refreshExpiry,
		Active:         true,
	}
	if err := uc.credentials.Create(ctx, row); err != nil {
		uc.logger.Error("failed to persist refresh token", zap.Error(err), zap.String("identityID", identity.ID))
		return nil, err
	}

	uc.logger.Info("user tokens issued", zap.String("identityID", identity.ID))
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (uc *tokenUseCase) IssueServiceCredential(ctx context.Context, ownerID *string, name string, scopes []string, ttl *time.Duration) (*model.Credential, string, error) {
	var expiresAt *time.Time
	if ttl != nil && *ttl > 0 {
		t := time.Now().Add(*ttl)
		expiresAt = &t
	}

	// Row first, so the signed token can embed a stable credential id.
	row := &model.Credential{
		ID:         uuid.NewString(),
		IdentityID: ownerID,
		Kind:       model.CredentialKindService,
		Name:       name,
		ExpiresAt:  expiresAt,
		Active:     true,
	}
	row.SetScopeList(scopes)

	if err := uc.credentials.Create(ctx, row); err != nil {
		return nil, "", err
	}

	claims := Claims{
		Kind:         model.CredentialKindService,
		DisplayName:  name,
		CredentialID: row.ID,
		OwnerID:      ownerID,
		Scopes:       scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, "", apperrors.Internal("failed to sign service credential", err)
	}

	row.TokenSignature = signed
	if err := uc.credentials.Update(ctx, row); err != nil {
		uc.logger.Error("failed to store signed service credential", zap.Error(err), zap.String("credentialID", row.ID))
		return nil, "", err
	}

	uc.logger.Info("service credential issued",
		zap.String("credentialID", row.ID),
		zap.Strings("scopes", scopes))
	return row, signed, nil
}

func (uc *tokenUseCase) Validate(ctx context.Context, tokenStr string) (*model.Principal, error) {
	claims, err := uc.parse(tokenStr)
	if err != nil {
		uc.logger.Warn("token validation failed", zap.Error(err))
		return nil, apperrors.Authentication("invalid or expired credential", err)
	}

	switch claims.Kind {
	case model.CredentialKindAccess:
		identityID := claims.Subject
		return &model.Principal{
			IdentityID:  &identityID,
			DisplayName: claims.DisplayName,
			AuthType:    model.AuthTypeUser,
		}, nil

	case model.CredentialKindRefresh:
		row, err := uc.activeRefreshRow(ctx, tokenStr)
		if err != nil {
			return nil, err
		}
		return &model.Principal{
			IdentityID:   row.IdentityID,
			CredentialID: &row.ID,
			DisplayName:  claims.DisplayName,
			AuthType:     model.AuthTypeUser,
		}, nil

	case model.CredentialKindService:
		row, err := uc.credentials.GetByID(ctx, claims.CredentialID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.Authentication("credential revoked")
			}
			return nil, err
		}
		if !row.Active {
			uc.logger.Warn("revoked service credential presented", zap.String("credentialID", row.ID))
			return nil, apperrors.Authentication("credential revoked")
		}
		if row.Expired(time.Now()) {
			uc.logger.Warn("expired service credential presented", zap.String("credentialID", row.ID))
			return nil, apperrors.Authentication("credential expired", errTokenExpired)
		}

		now := time.Now()
		if err := uc.credentials.TouchLastUsed(ctx, row.ID, now); err != nil {
			// Stamping is best-effort; validation already succeeded.
			uc.logger.Warn("failed to stamp credential last used", zap.Error(err), zap.String("credentialID", row.ID))
		}

		displayName := row.Name
		if displayName == "" {
			displayName = "service"
		}

		// Row scopes are authoritative over token-embedded scopes so a
		// credential can be narrowed without reissuing the token.
		return &model.Principal{
			IdentityID:   row.IdentityID,
			CredentialID: &row.ID,
			DisplayName:  displayName,
			AuthType:     model.AuthTypeService,
			Scopes:       scope.NewSet(row.ScopeList()...),
		}, nil
	}

	return nil, apperrors.Authentication("unrecognized credential kind")
}

func (uc *tokenUseCase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := uc.parse(refreshToken)
	if err != nil {
		uc.logger.Warn("refresh token validation failed", zap.Error(err))
		return "", apperrors.Authentication("invalid or expired refresh token", err)
	}
	if claims.Kind != model.CredentialKindRefresh {
		return "", apperrors.Authentication("not a refresh token")
	}

	if _, err := uc.activeRefreshRow(ctx, refreshToken); err != nil {
		return "", err
	}

	identity := &model.Identity{ID: claims.Subject, DisplayName: claims.DisplayName}
	access, err := uc.signAccessToken(identity)
	if err != nil {
		return "", apperrors.Internal("failed to sign access token", err)
	}

	uc.logger.Info("access token refreshed", zap.String("identityID", claims.Subject))
	return access, nil
}

func (uc *tokenUseCase) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	row, err := uc.credentials.GetBySignature(ctx, signatureSegment(refreshToken))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Authentication("unknown refresh token")
		}
		return err
	}

	if err := uc.credentials.Deactivate(ctx, row.ID); err != nil {
		return err
	}

	uc.logger.Info("refresh token revoked", zap.String("credentialID", row.ID))
	return nil
}

func (uc *tokenUseCase) RevokeCredential(ctx context.Context, credentialID, requestingIdentity string) error {
	row, err := uc.credentials.GetByID(ctx, credentialID)
	if err != nil {
		return err
	}

	if row.IdentityID == nil || *row.IdentityID != requestingIdentity {
		uc.logger.Warn("unauthorized credential revocation attempt",
			zap.String("credentialID", credentialID),
			zap.String("requestingIdentity", requestingIdentity))
		return apperrors.Authorization("only the credential owner can revoke it")
	}

	if err := uc.credentials.Deactivate(ctx, credentialID); err != nil {
		return err
	}

	uc.logger.Info("credential revoked",
		zap.String("credentialID", credentialID),
		zap.String("revokedBy", requestingIdentity))
	return nil
}

func (uc *tokenUseCase) ListCredentials(ctx context.Context, identityID string) ([]*model.Credential, error) {
	if identityID == "" {
		return nil, apperrors.Validation("identity ID cannot be empty")
	}
	return uc.credentials.ListByIdentity(ctx, identityID)
}

func (uc *tokenUseCase) signAccessToken(identity *model.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind:        model.CredentialKindAccess,
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}

func (uc *tokenUseCase) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return uc.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", errTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", errTokenSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", errTokenMalformed, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errTokenMalformed
	}
	if !claims.validKind() {
		return nil, fmt.Errorf("%w: unrecognized kind %q", errTokenMalformed, claims.Kind)
	}
	return claims, nil
}

// activeRefreshRow confirms the persisted refresh row is present, active and
// unexpired. Structural validity alone is not enough for refresh tokens.
func (uc *tokenUseCase) activeRefreshRow(ctx context.Context, refreshToken string) (*model.Credential, error) {
	row, err := uc.credentials.GetBySignature(ctx, signatureSegment(refreshToken))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication("refresh token revoked")
		}
		return nil, err
	}
	if !row.Active {
		uc.logger.Warn("revoked refresh token presented", zap.String("credentialID", row.ID))
		return nil, apperrors.Authentication("refresh token revoked")
	}
	if row.Expired(time.Now()) {
		return nil, apperrors.Authentication("refresh token expired", errTokenExpired)
	}
	return row, nil
}

func signatureSegment(token string) string {
	if i := strings.LastIndexByte(token, '.'); i >= 0 {
		return token[i+1:]
	}
	return token
}
