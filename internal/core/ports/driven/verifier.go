package driven

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// AccountVerifier checks credentials against the upstream API and
// reports the account they belong to.
type AccountVerifier interface {
	// Verify authenticates with the account the settings describe and
	// returns the authenticated user. Returns domain.ErrAuthInvalid
	// wrapped errors for rejected credentials.
	Verify(ctx context.Context, settings domain.Settings) (*domain.Account, error)
}
