package token

import (
	"github.com/banterhq/banter/domain/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload for all three credential kinds, discriminated
// on Kind. Decoding rejects any payload whose kind is unrecognized rather
// than trusting whichever optional fields happen to be present.
type Claims struct {
	Kind         model.CredentialKind `json:"kind"`
	DisplayName  string               `json:"name,omitempty"`
	CredentialID string               `json:"credentialId,omitempty"`
	OwnerID      *string              `json:"ownerId,omitempty"`
	Scopes       []string             `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) validKind() bool {
	switch c.Kind {
	case model.CredentialKindAccess, model.CredentialKindRefresh, model.CredentialKindService:
		return true
	}
	return false
}

// TokenPair is what a user login produces.
type TokenPair struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken"`
}
