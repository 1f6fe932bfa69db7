package domain

import (
	"fmt"
	"time"
)

// Default values for optional settings.
const (
	// DefaultSearchWindowSeconds is the user search window: 30 days.
	DefaultSearchWindowSeconds = 2592000

	// DefaultRequestTimeout bounds a single upstream HTTP request.
	DefaultRequestTimeout = 300 * time.Second
)

// AuthSettings holds the upstream credentials. OAuth takes precedence
// over the API token when both are present.
type AuthSettings struct {
	// AccessToken is an OAuth bearer token.
	AccessToken string

	// RefreshToken renews the access token when paired with a client.
	RefreshToken string

	// ClientID identifies the OAuth client for refresh and login.
	ClientID string

	// ClientSecret is the OAuth client secret.
	ClientSecret string

	// Email is the agent address for API-token authentication.
	Email string

	// APIToken is the account API token paired with Email.
	APIToken string
}

// Method returns the authentication method the settings can support.
func (a AuthSettings) Method() AuthMethod {
	switch {
	case a.AccessToken != "" || a.RefreshToken != "":
		return AuthMethodOAuth
	case a.Email != "" && a.APIToken != "":
		return AuthMethodAPIToken
	default:
		return AuthMethodNone
	}
}

// MarketplaceSettings identifies an app listing. When set, the values
// are forwarded as request headers on every upstream call.
type MarketplaceSettings struct {
	Name           string
	OrganizationID string
	AppID          string
}

// Settings holds the full connector configuration.
type Settings struct {
	// Subdomain is the account subdomain: {subdomain}.zendesk.com.
	Subdomain string

	// StartDate is the initial cursor for streams with no bookmark.
	StartDate time.Time

	// Auth holds the upstream credentials.
	Auth AuthSettings

	// Marketplace identifies an app listing, optional.
	Marketplace MarketplaceSettings

	// SearchWindowSeconds sizes the user search window in seconds.
	SearchWindowSeconds int

	// RequestTimeout bounds a single upstream HTTP request.
	RequestTimeout time.Duration
}

// DefaultSettings returns settings with defaults applied. Subdomain,
// StartDate and credentials must still be supplied.
func DefaultSettings() Settings {
	return Settings{
		SearchWindowSeconds: DefaultSearchWindowSeconds,
		RequestTimeout:      DefaultRequestTimeout,
	}
}

// Validate checks the settings are complete enough to sync.
func (s Settings) Validate() error {
	if s.Subdomain == "" {
		return fmt.Errorf("%w: subdomain is required", ErrInvalidInput)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if s.Auth.Method() == AuthMethodNone {
		return fmt.Errorf("%w: set an access token or email and API token", ErrAuthRequired)
	}
	if s.SearchWindowSeconds < 1 {
		return fmt.Errorf("%w: search window must be at least 1 second", ErrInvalidInput)
	}
	return nil
}

// BaseURL returns the account's API root.
func (s Settings) BaseURL() string {
	return fmt.Sprintf("https://%s.zendesk.com/api/v2", s.Subdomain)
}
