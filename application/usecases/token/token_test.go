package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/domain/scope"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCredentialRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Credential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{rows: make(map[string]*model.Credential)}
}

func (r *memCredentialRepo) Create(_ context.Context, credential *model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *credential
	r.rows[credential.ID] = &cp
	return nil
}

func (r *memCredentialRepo) Update(_ context.Context, credential *model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[credential.ID]; !ok {
		return apperrors.NotFound("credential not found")
	}
	cp := *credential
	r.rows[credential.ID] = &cp
	return nil
}

func (r *memCredentialRepo) GetByID(_ context.Context, id string) (*model.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("credential not found")
	}
	cp := *row
	return &cp, nil
}

func (r *memCredentialRepo) GetBySignature(_ context.Context, signature string) (*model.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.TokenSignature == signature {
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("credential not found")
}

func (r *memCredentialRepo) ListByIdentity(_ context.Context, identityID string) ([]*model.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Credential
	for _, row := range r.rows {
		if row.IdentityID != nil && *row.IdentityID == identityID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCredentialRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return apperrors.NotFound("credential not found")
	}
	row.Active = false
	return nil
}

func (r *memCredentialRepo) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return apperrors.NotFound("credential not found")
	}
	row.LastUsedAt = &at
	return nil
}

var _ repository.CredentialRepository = (*memCredentialRepo)(nil)

func newTestTokenUseCase(repo repository.CredentialRepository) TokenUseCase {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Secret:           "test-secret",
			AccessTTLMinutes: 15,
			RefreshTTLDays:   7,
		},
	}
	return NewTokenUseCase(repo, cfg, logger.NewNop())
}

func testIdentity() *model.Identity {
	return &model.Identity{ID: "identity-1", Username: "alice", DisplayName: "Alice"}
}

func TestIssueUserTokensAndValidateAccess(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	pair, err := uc.IssueUserTokens(context.Background(), testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	principal, err := uc.Validate(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, model.AuthTypeUser, principal.AuthType)
	require.NotNil(t, principal.IdentityID)
	assert.Equal(t, "identity-1", *principal.IdentityID)
	assert.Equal(t, "Alice", principal.DisplayName)
	assert.True(t, principal.IsUser())
}

func TestValidateRejectsGarbage(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	_, err := uc.Validate(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	repo := newMemCredentialRepo()
	issuer := newTestTokenUseCase(repo)

	pair, err := issuer.IssueUserTokens(context.Background(), testIdentity())
	require.NoError(t, err)

	otherCfg := &config.Config{
		Auth: config.AuthConfig{Secret: "different-secret", AccessTTLMinutes: 15, RefreshTTLDays: 7},
	}
	verifier := NewTokenUseCase(repo, otherCfg, logger.NewNop())

	_, err = verifier.Validate(context.Background(), pair.Access)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
	assert.ErrorIs(t, err, errTokenSignature)
}

func TestValidateDistinguishesExpiry(t *testing.T) {
	repo := newMemCredentialRepo()
	cfg := &config.Config{
		Auth: config.AuthConfig{Secret: "test-secret", AccessTTLMinutes: -1, RefreshTTLDays: 7},
	}
	uc := NewTokenUseCase(repo, cfg, logger.NewNop())

	pair, err := uc.IssueUserTokens(context.Background(), testIdentity())
	require.NoError(t, err)

	_, err = uc.Validate(context.Background(), pair.Access)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
	assert.ErrorIs(t, err, errTokenExpired)
	assert.NotErrorIs(t, err, errTokenSignature)
}

func TestRefreshFlow(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	pair, err := uc.IssueUserTokens(context.Background(), testIdentity())
	require.NoError(t, err)

	access, err := uc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	require.NotEmpty(t, access)

	principal, err := uc.Validate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, "identity-1", *principal.IdentityID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	pair, err := uc.IssueUserTokens(context.Background(), testIdentity())
	require.NoError(t, err)

	_, err = uc.Refresh(context.Background(), pair.Access)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestRevokedRefreshTokenStopsRefreshing(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	pair, err := uc.IssueUserTokens(context.Background(), testIdentity())
	require.NoError(t, err)

	require.NoError(t, uc.RevokeRefreshToken(context.Background(), pair.Refresh))

	_, err = uc.Refresh(context.Background(), pair.Refresh)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestServiceCredentialLifecycle(t *testing.T) {
	repo := newMemCredentialRepo()
	uc := newTestTokenUseCase(repo)

	owner := "identity-1"
	row, signed, err := uc.IssueServiceCredential(context.Background(), &owner, "reporting-bot", []string{scope.AllowAllChats}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.Equal(t, model.CredentialKindService, row.Kind)

	principal, err := uc.Validate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, model.AuthTypeService, principal.AuthType)
	assert.False(t, principal.IsUser())
	assert.True(t, scope.Has(principal.Scopes, scope.AllowAllChats))

	stored, err := repo.GetByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastUsedAt)
}

func TestServiceRowScopesAreAuthoritative(t *testing.T) {
	repo := newMemCredentialRepo()
	uc := newTestTokenUseCase(repo)

	owner := "identity-1"
	row, signed, err := uc.IssueServiceCredential(context.Background(), &owner, "bot", []string{scope.AllowAllChats}, nil)
	require.NoError(t, err)

	// Narrow the stored grant without reissuing the token.
	row.SetScopeList([]string{scope.ReadMessages})
	require.NoError(t, repo.Update(context.Background(), row))

	principal, err := uc.Validate(context.Background(), signed)
	require.NoError(t, err)
	assert.False(t, scope.Has(principal.Scopes, scope.AllowAllChats))
	assert.True(t, scope.Has(principal.Scopes, scope.ReadMessages))
}

func TestRevokedServiceCredentialIsRejected(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	owner := "identity-1"
	row, signed, err := uc.IssueServiceCredential(context.Background(), &owner, "bot", []string{scope.SendMessages}, nil)
	require.NoError(t, err)

	require.NoError(t, uc.RevokeCredential(context.Background(), row.ID, owner))

	_, err = uc.Validate(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestExpiredServiceCredentialIsRejected(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	owner := "identity-1"
	ttl := time.Millisecond
	_, signed, err := uc.IssueServiceCredential(context.Background(), &owner, "bot", []string{scope.SendMessages}, &ttl)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = uc.Validate(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
}

func TestRevokeCredentialEnforcesOwnership(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	owner := "identity-1"
	row, _, err := uc.IssueServiceCredential(context.Background(), &owner, "bot", []string{scope.SendMessages}, nil)
	require.NoError(t, err)

	err = uc.RevokeCredential(context.Background(), row.ID, "identity-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))

	// The owner still can.
	require.NoError(t, uc.RevokeCredential(context.Background(), row.ID, owner))
}

func TestListCredentials(t *testing.T) {
	uc := newTestTokenUseCase(newMemCredentialRepo())

	owner := "identity-1"
	_, _, err := uc.IssueServiceCredential(context.Background(), &owner, "bot-a", []string{scope.SendMessages}, nil)
	require.NoError(t, err)
	_, _, err = uc.IssueServiceCredential(context.Background(), &owner, "bot-b", []string{scope.ReadMessages}, nil)
	require.NoError(t, err)

	rows, err := uc.ListCredentials(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = uc.ListCredentials(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
