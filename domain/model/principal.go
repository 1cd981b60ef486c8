package model

import mapset "github.com/deckarep/golang-set/v2"

type AuthType string

const (
	AuthTypeUser    AuthType = "user"
	AuthTypeService AuthType = "service"
)

// Principal is the resolved result of validating a credential. It is bound
// to a request or to a websocket session at handshake time and never mutated
// afterwards.
type Principal struct {
	IdentityID   *string
	CredentialID *string
	DisplayName  string
	AuthType     AuthType
	Scopes       mapset.Set[string]
}

// IsUser reports whether the principal came in through the user token path.
// User principals are fully trusted and bypass scope checks.
func (p *Principal) IsUser() bool {
	return p != nil && p.AuthType == AuthTypeUser
}

// HasIdentity reports whether the principal is bound to an identity. Bare
// service credentials have none and act as a system voice.
func (p *Principal) HasIdentity() bool {
	return p != nil && p.IdentityID != nil && *p.IdentityID != ""
}
