package driven

import (
	"context"
	"errors"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// Stream extracts records for one Zendesk entity collection.
// Each stream (tickets, users, organizations, etc.) implements this interface.
type Stream interface {
	// Name returns the stream name.
	Name() string

	// ReplicationMethod returns how the stream extracts records.
	ReplicationMethod() domain.ReplicationMethod

	// ReplicationKey returns the incremental cursor field, or "" for
	// full-table streams.
	ReplicationKey() string

	// KeyProperties returns the fields forming the primary key.
	KeyProperties() []string

	// Schema returns the record schema. Streams with account-specific
	// custom fields fetch the field definitions here.
	Schema(ctx context.Context) (*domain.Schema, error)

	// Sync extracts records changed since the bookmark. A zero bookmark
	// means extract from the configured start date. Returns channels for
	// records and errors; both close when extraction ends. Streams send
	// Checkpoint sentinels on the error channel at safe resume points
	// and SyncComplete when extraction finishes.
	Sync(ctx context.Context, bookmark domain.Bookmark) (<-chan domain.Record, <-chan error)
}

// StreamRegistry provides access to the built-in streams.
type StreamRegistry interface {
	// Get returns the named stream.
	// Returns domain.ErrUnknownStream for unrecognised names.
	Get(name string) (Stream, error)

	// List returns all streams in catalog order.
	List() []Stream

	// Names returns all stream names in catalog order.
	Names() []string
}

// Checkpoint is sent on the error channel at a safe resume point
// mid-extraction. Carries the bookmark to persist; a run interrupted
// after a checkpoint resumes from it.
type Checkpoint struct {
	Bookmark domain.Bookmark
}

// Error implements the error interface.
// This allows Checkpoint to be sent on the error channel.
func (Checkpoint) Error() string {
	return "checkpoint"
}

// IsCheckpoint checks if an error is a mid-sync checkpoint.
// Returns the Checkpoint and true if it is, nil and false otherwise.
func IsCheckpoint(err error) (*Checkpoint, bool) {
	var cp *Checkpoint
	if errors.As(err, &cp) {
		return cp, true
	}
	return nil, false
}

// SyncComplete is sent on the error channel when extraction completes
// successfully. Carries the stream's final bookmark; zero for
// full-table streams.
type SyncComplete struct {
	Bookmark domain.Bookmark
}

// Error implements the error interface.
// This allows SyncComplete to be sent on the error channel.
func (SyncComplete) Error() string {
	return "sync complete"
}

// IsSyncComplete checks if an error is actually a successful completion.
// Returns the SyncComplete and true if it is, nil and false otherwise.
func IsSyncComplete(err error) (*SyncComplete, bool) {
	var sc *SyncComplete
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}
