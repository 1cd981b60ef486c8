// Package scope implements the capability checks applied to service
// credentials. The functions are pure: they inspect a granted scope set and
// never touch storage. User-path principals are fully trusted and bypass
// these checks entirely; scopes only constrain machine integrations.
package scope

import mapset "github.com/deckarep/golang-set/v2"

const (
	// AllowAll is the superset capability: a credential holding it passes
	// every scope check.
	AllowAll = "allow-all"

	// AllowAllChats grants read and send access to every room.
	AllowAllChats = "allow-all-chats"
	// ManageOwnChats grants access to rooms created by the credential's
	// owning identity.
	ManageOwnChats = "manage-own-chats"

	ReadMessages = "read-messages"
	SendMessages = "send-messages"
)

// NewSet builds a scope set from the granted scope strings.
func NewSet(scopes ...string) mapset.Set[string] {
	return mapset.NewSet(scopes...)
}

// Has reports whether the set grants the required scope, either directly or
// through AllowAll.
func Has(scopes mapset.Set[string], required string) bool {
	if scopes == nil {
		return false
	}
	return scopes.Contains(AllowAll) || scopes.Contains(required)
}

// HasAny reports whether the set grants at least one of the required scopes.
func HasAny(scopes mapset.Set[string], required ...string) bool {
	if scopes == nil {
		return false
	}
	if scopes.Contains(AllowAll) {
		return true
	}
	for _, r := range required {
		if scopes.Contains(r) {
			return true
		}
	}
	return false
}

// HasAll reports whether the set grants every required scope.
func HasAll(scopes mapset.Set[string], required ...string) bool {
	if scopes == nil {
		return false
	}
	if scopes.Contains(AllowAll) {
		return true
	}
	for _, r := range required {
		if !scopes.Contains(r) {
			return false
		}
	}
	return true
}
