package zendesk

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
)

// Ensure authenticators implement the port.
var (
	_ driven.Authenticator = (*OAuthAuthenticator)(nil)
	_ driven.Authenticator = (*APITokenAuthenticator)(nil)
)

// OAuthAuthenticator supplies a bearer token, refreshing it through the
// account's token endpoint when a refresh token and client are
// configured.
type OAuthAuthenticator struct {
	source oauth2.TokenSource
}

// NewOAuthAuthenticator builds an authenticator from the configured
// credentials. With only an access token it never refreshes; with a
// refresh token and client ID/secret it refreshes transparently.
func NewOAuthAuthenticator(ctx context.Context, subdomain string, auth domain.AuthSettings) *OAuthAuthenticator {
	token := &oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		TokenType:    "Bearer",
	}

	if auth.RefreshToken != "" && auth.ClientID != "" {
		conf := &oauth2.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			Endpoint:     OAuthEndpoint(subdomain),
		}
		return &OAuthAuthenticator{source: conf.TokenSource(ctx, token)}
	}

	return &OAuthAuthenticator{source: oauth2.StaticTokenSource(token)}
}

// Authorization returns "Bearer <token>", refreshing first if needed.
func (a *OAuthAuthenticator) Authorization(_ context.Context) (string, error) {
	token, err := a.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	return "Bearer " + token.AccessToken, nil
}

// Method returns the authentication method.
func (a *OAuthAuthenticator) Method() domain.AuthMethod {
	return domain.AuthMethodOAuth
}

// IsAuthenticated returns true if a token is available.
func (a *OAuthAuthenticator) IsAuthenticated() bool {
	token, err := a.source.Token()
	return err == nil && token.AccessToken != ""
}

// APITokenAuthenticator supplies HTTP basic credentials in the
// "{email}/token:{api_token}" form the API expects.
type APITokenAuthenticator struct {
	email    string
	apiToken string
}

// NewAPITokenAuthenticator creates an API-token authenticator.
func NewAPITokenAuthenticator(email, apiToken string) *APITokenAuthenticator {
	return &APITokenAuthenticator{email: email, apiToken: apiToken}
}

// Authorization returns the basic auth header value.
func (a *APITokenAuthenticator) Authorization(_ context.Context) (string, error) {
	if a.email == "" || a.apiToken == "" {
		return "", ErrNoCredentials
	}
	credentials := fmt.Sprintf("%s/token:%s", a.email, a.apiToken)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)), nil
}

// Method returns the authentication method.
func (a *APITokenAuthenticator) Method() domain.AuthMethod {
	return domain.AuthMethodAPIToken
}

// IsAuthenticated returns true if both email and token are set.
func (a *APITokenAuthenticator) IsAuthenticated() bool {
	return a.email != "" && a.apiToken != ""
}

// NewAuthenticator selects an authenticator from the settings.
// OAuth takes precedence over the API token.
func NewAuthenticator(ctx context.Context, settings domain.Settings) (driven.Authenticator, error) {
	switch settings.Auth.Method() {
	case domain.AuthMethodOAuth:
		return NewOAuthAuthenticator(ctx, settings.Subdomain, settings.Auth), nil
	case domain.AuthMethodAPIToken:
		return NewAPITokenAuthenticator(settings.Auth.Email, settings.Auth.APIToken), nil
	default:
		return nil, ErrNoCredentials
	}
}

// OAuthEndpoint returns the account's OAuth endpoints.
func OAuthEndpoint(subdomain string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  fmt.Sprintf("https://%s.zendesk.com/oauth/authorizations/new", subdomain),
		TokenURL: fmt.Sprintf("https://%s.zendesk.com/oauth/tokens", subdomain),
	}
}
