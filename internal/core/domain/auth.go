package domain

import "time"

// AuthMethod identifies how requests are authenticated upstream.
type AuthMethod string

// Available authentication methods.
const (
	// AuthMethodOAuth uses a bearer token, refreshed when possible.
	AuthMethodOAuth AuthMethod = "oauth"

	// AuthMethodAPIToken uses HTTP basic auth with "{email}/token".
	AuthMethodAPIToken AuthMethod = "api_token"

	// AuthMethodNone means no credentials are configured.
	AuthMethodNone AuthMethod = "none"
)

// String returns the string representation.
func (m AuthMethod) String() string {
	return string(m)
}

// OAuthToken represents stored OAuth credentials.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the token has expired.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// Account identifies the authenticated Zendesk user, as reported by
// the current-user endpoint.
type Account struct {
	// ID is the user's numeric identifier.
	ID int64

	// Name is the user's display name.
	Name string

	// Email is the user's address.
	Email string

	// Role is the account role: end-user, agent or admin.
	Role string
}
