package zendesk

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
)

// Ensure Verifier implements the interface.
var _ driven.AccountVerifier = (*Verifier)(nil)

// Verifier checks credentials by calling the current-user endpoint.
type Verifier struct{}

// NewVerifier creates a new verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify authenticates against the account and returns the
// authenticated user.
func (v *Verifier) Verify(ctx context.Context, settings domain.Settings) (*domain.Account, error) {
	auth, err := NewAuthenticator(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("build authenticator: %w", err)
	}
	return NewClient(settings, auth).CurrentUser(ctx)
}
