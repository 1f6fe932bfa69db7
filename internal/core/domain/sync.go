package domain

import "time"

// SyncRun records one execution of the extraction pipeline, covering
// every stream synced in that execution.
type SyncRun struct {
	// ID is the unique identifier for the run.
	ID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run finished, zero while running.
	EndedAt time.Time

	// Streams lists the stream names synced, in order.
	Streams []string

	// RecordCount is the total records emitted across all streams.
	RecordCount int

	// Success indicates the run completed without error.
	Success bool

	// Error holds the failure message if Success is false.
	Error string
}

// Duration returns the run's elapsed time, or time since start for a
// run still in progress.
func (r SyncRun) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}
