package driven

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// Authenticator supplies the Authorization header value for upstream
// API calls. Implementations handle token refresh transparently.
type Authenticator interface {
	// Authorization returns the full Authorization header value,
	// e.g. "Bearer <token>" or "Basic <credentials>".
	Authorization(ctx context.Context) (string, error)

	// Method returns the authentication method in use.
	Method() domain.AuthMethod

	// IsAuthenticated returns true if credentials are configured.
	IsAuthenticated() bool
}
