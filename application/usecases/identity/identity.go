package identity

import (
	"context"
	"strings"

	"github.com/banterhq/banter/application/usecases/token"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
)

type IdentityUseCase interface {
	Register(ctx context.Context, username, displayName, password string) (*model.Identity, *token.TokenPair, error)
	Login(ctx context.Context, username, password string) (*model.Identity, *token.TokenPair, error)
	GetByID(ctx context.Context, id string) (*model.Identity, error)
}

type identityUseCase struct {
	repository repository.IdentityRepository
	tokens     token.TokenUseCase
	logger     *logger.Logger
}

func NewIdentityUseCase(
	repository repository.IdentityRepository,
	tokens token.TokenUseCase,
	logger *logger.Logger,
) IdentityUseCase {
	return &identityUseCase{
		repository: repository,
		tokens:     tokens,
		logger:     logger,
	}
}

func (uc *identityUseCase) Register(ctx context.Context, username, displayName, password string) (*model.Identity, *token.TokenPair, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, nil, apperrors.Validation("username must be between 3 and 64 characters")
	}
	if len(password) < minPasswordLength {
		return nil, nil, apperrors.Validation("password must be at least 8 characters")
	}
	if displayName == "" {
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperrors.Internal("failed to hash password", err)
	}

	identity := &model.Identity{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}

	if err := uc.repository.Create(ctx, identity); err != nil {
		uc.logger.Error("failed to create identity", zap.Error(err), zap.String("username", username))
		return nil, nil, err
	}

	pair, err := uc.tokens.IssueUserTokens(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("identity registered", zap.String("identityID", identity.ID), zap.String("username", username))
	return identity, pair, nil
}

func (uc *identityUseCase) Login(ctx context.Context, username, password string) (*model.Identity, *token.TokenPair, error) {
	identity, err := uc.repository.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.Authentication("invalid credentials")
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		uc.logger.Warn("failed login attempt", zap.String("username", username))
		return nil, nil, apperrors.Authentication("invalid credentials")
	}

	pair, err := uc.tokens.IssueUserTokens(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("identity logged in", zap.String("identityID", identity.ID))
	return identity, pair, nil
}

func (uc *identityUseCase) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	if id == "" {
		return nil, apperrors.Validation("identity ID cannot be empty")
	}
	return uc.repository.GetByID(ctx, id)
}
