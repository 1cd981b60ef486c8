package websocket

import (
	"context"
	"net/url"
	"testing"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	principals map[string]*model.Principal
}

func (v *stubValidator) Validate(_ context.Context, token string) (*model.Principal, error) {
	principal, ok := v.principals[token]
	if !ok {
		return nil, apperrors.Authentication("invalid or expired credential")
	}
	return principal, nil
}

func newTestAuthenticator() *Authenticator {
	userID := "identity-1"
	return NewAuthenticator(&stubValidator{principals: map[string]*model.Principal{
		"good-user-token": {IdentityID: &userID, DisplayName: "Alice", AuthType: model.AuthTypeUser},
		"good-api-key":    {DisplayName: "bot", AuthType: model.AuthTypeService},
	}}, logger.NewNop())
}

func TestAuthenticateBothCredentialsRejected(t *testing.T) {
	a := newTestAuthenticator()

	query := url.Values{"token": {"good-user-token"}, "apiKey": {"good-api-key"}}
	session, err := a.Authenticate(context.Background(), "client-1", query)

	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, apperrors.IsValidation(err), "both credentials is a protocol violation, not an auth failure")
}

func TestAuthenticateNoCredentialIsAnonymous(t *testing.T) {
	a := newTestAuthenticator()

	session, err := a.Authenticate(context.Background(), "client-1", url.Values{})
	require.NoError(t, err)
	assert.False(t, session.Authenticated())
	assert.Equal(t, "client-1", session.ClientID)
	assert.Empty(t, session.IdentityID())
}

func TestAuthenticateInvalidCredentialSoftFails(t *testing.T) {
	a := newTestAuthenticator()

	session, err := a.Authenticate(context.Background(), "client-1", url.Values{"token": {"forged"}})
	require.NoError(t, err, "a bad credential downgrades to anonymous instead of closing the door")
	assert.False(t, session.Authenticated())
}

func TestAuthenticateValidUserToken(t *testing.T) {
	a := newTestAuthenticator()

	session, err := a.Authenticate(context.Background(), "client-1", url.Values{"token": {"good-user-token"}})
	require.NoError(t, err)
	require.True(t, session.Authenticated())
	assert.Equal(t, "identity-1", session.IdentityID())
	assert.True(t, session.Principal.IsUser())
}

func TestAuthenticateValidAPIKey(t *testing.T) {
	a := newTestAuthenticator()

	session, err := a.Authenticate(context.Background(), "client-1", url.Values{"apiKey": {"good-api-key"}})
	require.NoError(t, err)
	require.True(t, session.Authenticated())
	assert.False(t, session.Principal.IsUser())
	assert.Empty(t, session.IdentityID())
}

func TestAuthenticateKindFieldMismatch(t *testing.T) {
	a := newTestAuthenticator()

	// Service credential in the user token field.
	session, err := a.Authenticate(context.Background(), "client-1", url.Values{"token": {"good-api-key"}})
	require.NoError(t, err)
	assert.False(t, session.Authenticated())

	// User token in the apiKey field.
	session, err = a.Authenticate(context.Background(), "client-1", url.Values{"apiKey": {"good-user-token"}})
	require.NoError(t, err)
	assert.False(t, session.Authenticated())
}
