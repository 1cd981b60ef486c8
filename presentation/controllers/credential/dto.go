package credential

import "time"

type IssueRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=100"`
	Scopes   []string `json:"scopes" binding:"required,min=1"`
	TTLHours int      `json:"ttl_hours" binding:"omitempty,min=1,max=8760"`
}

type CredentialResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Scopes     []string   `json:"scopes"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type IssuedCredentialResponse struct {
	Credential CredentialResponse `json:"credential"`
	// APIKey is returned once at issue time and never again.
	APIKey string `json:"api_key"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
