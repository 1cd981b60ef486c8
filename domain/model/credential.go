package model

import (
	"strings"
	"time"
)

type CredentialKind string

const (
	CredentialKindAccess  CredentialKind = "access"
	CredentialKindRefresh CredentialKind = "refresh"
	CredentialKindService CredentialKind = "service"
)

// Credential is a persisted token row. Access tokens are stateless and never
// stored; refresh tokens are stored by their signature segment so they can be
// revoked; service credentials are stored by id so their scopes can be
// narrowed or revoked without reissuing the signed token.
type Credential struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	IdentityID     *string        `gorm:"size:36;index" json:"identityId"`
	Kind           CredentialKind `gorm:"size:16;not null" json:"kind"`
	Name           string         `gorm:"size:128" json:"name"`
	Scopes         string         `gorm:"type:text" json:"-"`
	TokenSignature string         `gorm:"uniqueIndex;size:512" json:"-"`
	ExpiresAt      *time.Time     `gorm:"index" json:"expiresAt"`
	Active         bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time      `json:"createdAt"`
	LastUsedAt     *time.Time     `json:"lastUsedAt"`
}

func (Credential) TableName() string {
	return "credentials"
}

// ScopeList splits the stored comma-joined scope string. An empty string
// means no elevated capability at all.
func (c *Credential) ScopeList() []string {
	if c.Scopes == "" {
		return nil
	}
	parts := strings.Split(c.Scopes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SetScopeList stores scopes in the comma-joined on-row form.
func (c *Credential) SetScopeList(scopes []string) {
	c.Scopes = strings.Join(scopes, ",")
}

// Expired reports whether the row's own expiry has passed. A nil ExpiresAt
// never expires.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
