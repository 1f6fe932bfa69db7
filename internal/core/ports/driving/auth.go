package driving

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// AuthService manages upstream credentials.
type AuthService interface {
	// Login runs the browser OAuth flow and persists the resulting
	// token. Blocks until the callback arrives or ctx is cancelled.
	Login(ctx context.Context) (*domain.OAuthToken, error)

	// Check validates the stored credentials against the API and
	// returns the authenticated account.
	Check(ctx context.Context) (*domain.Account, error)

	// Refresh renews the stored OAuth access token using the refresh
	// token and persists the result. A no-op for API-token accounts.
	Refresh(ctx context.Context) error

	// Method returns the active authentication method.
	Method() domain.AuthMethod
}
