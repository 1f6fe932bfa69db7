package oauth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Ensure BrowserAuthorizer implements the interface.
var _ driven.Authorizer = (*BrowserAuthorizer)(nil)

const (
	// Port range probed for the local callback server.
	callbackPortStart = 8080
	callbackPortEnd   = 8099

	// How long to wait for the user to approve in the browser.
	authorizeTimeout = 5 * time.Minute
)

// BrowserAuthorizer implements driven.Authorizer using the
// authorization-code flow with PKCE. Authorize opens the system
// browser, receives the redirect on a local callback server, and
// exchanges the code for tokens.
type BrowserAuthorizer struct {
	// OpenURL launches the browser; replaceable in tests.
	OpenURL func(url string) error
}

// NewBrowserAuthorizer creates an authorizer that opens the default
// system browser.
func NewBrowserAuthorizer() *BrowserAuthorizer {
	return &BrowserAuthorizer{OpenURL: OpenBrowser}
}

// Authorize runs the interactive authorization-code flow.
func (a *BrowserAuthorizer) Authorize(ctx context.Context, subdomain string, auth domain.AuthSettings) (*domain.OAuthToken, error) {
	port, err := FindAvailablePort(callbackPortStart, callbackPortEnd)
	if err != nil {
		return nil, fmt.Errorf("finding callback port: %w", err)
	}

	state := GenerateState()
	verifier := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)

	server := NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck // best-effort shutdown

	conf := &oauth2.Config{
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		Endpoint:     zendesk.OAuthEndpoint(subdomain),
		RedirectURL:  server.RedirectURI(),
		Scopes:       []string{"read"},
	}

	authURL := conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	if err := a.OpenURL(authURL); err != nil {
		return nil, fmt.Errorf("opening browser: %w", err)
	}

	timeout := authorizeTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	code, err := server.WaitForCode(timeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for authorization: %w", err)
	}

	token, err := conf.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return fromOAuth2Token(token), nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (a *BrowserAuthorizer) Refresh(ctx context.Context, subdomain string, auth domain.AuthSettings) (*domain.OAuthToken, error) {
	if auth.RefreshToken == "" {
		return nil, domain.ErrTokenRefreshFailed
	}

	conf := &oauth2.Config{
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		Endpoint:     zendesk.OAuthEndpoint(subdomain),
	}

	// Force the refresh grant by presenting an expired token
	source := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: auth.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	return fromOAuth2Token(token), nil
}

func fromOAuth2Token(token *oauth2.Token) *domain.OAuthToken {
	return &domain.OAuthToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
}
