package driven

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// Authorizer obtains and renews OAuth tokens for an account.
//
// Authorize is interactive: the implementation opens a browser and
// waits for the authorization-code callback. Refresh is not: it trades
// a stored refresh token for a new access token.
type Authorizer interface {
	// Authorize runs the authorization-code flow against the account's
	// OAuth endpoints and returns the resulting token. Blocks until
	// the callback arrives or ctx is cancelled.
	Authorize(ctx context.Context, subdomain string, auth domain.AuthSettings) (*domain.OAuthToken, error)

	// Refresh exchanges the configured refresh token for a new access
	// token. Returns domain.ErrTokenRefreshFailed when the account has
	// no refresh token to spend.
	Refresh(ctx context.Context, subdomain string, auth domain.AuthSettings) (*domain.OAuthToken, error)
}
