package driving

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// StateManager inspects and resets stored bookmarks.
type StateManager interface {
	// Show returns the stored state for all streams.
	Show(ctx context.Context) (*domain.State, error)

	// Reset removes the named stream's bookmark, or every bookmark
	// when stream is empty.
	Reset(ctx context.Context, stream string) error
}
