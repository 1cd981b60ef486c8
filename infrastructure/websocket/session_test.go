package websocket

import (
	"testing"

	"github.com/banterhq/banter/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry(t *testing.T) {
	reg := NewSessionRegistry()
	assert.Equal(t, 0, reg.Len())

	identityID := "identity-1"
	session := &Session{
		ClientID:  "client-1",
		Principal: &model.Principal{IdentityID: &identityID, AuthType: model.AuthTypeUser},
	}
	reg.Put(session)
	reg.Put(&Session{ClientID: "client-2"})

	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get("client-1")
	require.True(t, ok)
	assert.Equal(t, "identity-1", got.IdentityID())

	got, ok = reg.Get("client-2")
	require.True(t, ok)
	assert.False(t, got.Authenticated())

	reg.Remove("client-1")
	_, ok = reg.Get("client-1")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())

	// Removing an unknown id is a no-op.
	reg.Remove("client-missing")
	assert.Equal(t, 1, reg.Len())
}

func TestSessionNilSafety(t *testing.T) {
	var session *Session
	assert.False(t, session.Authenticated())
	assert.Empty(t, session.IdentityID())

	anonymous := &Session{ClientID: "c"}
	assert.False(t, anonymous.Authenticated())
	assert.Empty(t, anonymous.IdentityID())
}
