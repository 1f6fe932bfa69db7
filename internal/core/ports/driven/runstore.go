package driven

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// SyncRunStore records run history for inspection and the daemon's
// task bookkeeping.
type SyncRunStore interface {
	// Save stores or updates a run by ID.
	Save(ctx context.Context, run *domain.SyncRun) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.SyncRun, error)

	// List returns recent runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// Prune removes old runs, keeping the most recent 'keep'.
	Prune(ctx context.Context, keep int) error
}
