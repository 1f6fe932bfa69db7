package driving

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// SyncRunner coordinates record extraction across streams.
type SyncRunner interface {
	// Sync extracts one stream, emitting its schema, records and state.
	Sync(ctx context.Context, stream string) error

	// SyncAll extracts the selected streams in catalog order.
	SyncAll(ctx context.Context, opts SyncOptions) (*SyncSummary, error)

	// Status returns the live status for a stream.
	Status(ctx context.Context, stream string) (*SyncStatus, error)
}

// SyncOptions controls a SyncAll run.
type SyncOptions struct {
	// Streams restricts the run to the named streams. Empty means all
	// selected streams.
	Streams []string

	// Catalog restricts the run to the catalog's selected streams.
	// Ignored when Streams is set.
	Catalog *domain.Catalog

	// InitialState seeds the run's bookmarks, overriding stored ones.
	// Resulting bookmarks are persisted back to the store.
	InitialState *domain.State

	// Force continues with remaining streams after a stream fails.
	// The joined errors are still reported at the end.
	Force bool
}

// SyncStatus represents the current state of a stream extraction.
type SyncStatus struct {
	// Stream identifies the stream.
	Stream string

	// Running indicates if extraction is currently in progress.
	Running bool

	// RecordsEmitted is the count of records emitted so far.
	RecordsEmitted int

	// ErrorCount is the number of tolerated errors encountered.
	ErrorCount int
}

// SyncSummary reports a completed SyncAll run.
type SyncSummary struct {
	// RunID identifies the run in history.
	RunID string

	// Streams lists the stream names synced, in order.
	Streams []string

	// RecordCount is the total records emitted.
	RecordCount int

	// FailedStreams lists streams that errored, if any.
	FailedStreams []string
}
