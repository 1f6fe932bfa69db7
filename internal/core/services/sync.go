package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
	"github.com/custodia-labs/zensync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncRunner = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates record extraction across streams: for
// each selected stream it emits the schema, loads the bookmark, drains
// the stream's channels and persists state at every checkpoint.
type SyncOrchestrator struct {
	settings   driving.SettingsService
	stateStore driven.StateStore
	runStore   driven.SyncRunStore
	factory    driven.StreamFactory
	emitter    driven.Emitter
	normaliser driven.Normaliser

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// runHistoryKeep is how many sync runs the history retains.
const runHistoryKeep = 100

// NewSyncOrchestrator creates a new sync orchestrator.
// The runStore is optional - if nil, run history is not recorded.
func NewSyncOrchestrator(
	settings driving.SettingsService,
	stateStore driven.StateStore,
	runStore driven.SyncRunStore,
	factory driven.StreamFactory,
	emitter driven.Emitter,
	normaliser driven.Normaliser,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		settings:    settings,
		stateStore:  stateStore,
		runStore:    runStore,
		factory:     factory,
		emitter:     emitter,
		normaliser:  normaliser,
		activeSyncs: make(map[string]*driving.SyncStatus),
	}
}

// Sync extracts a single stream.
func (o *SyncOrchestrator) Sync(ctx context.Context, stream string) error {
	_, err := o.SyncAll(ctx, driving.SyncOptions{Streams: []string{stream}})
	return err
}

// SyncAll extracts the selected streams in catalog order.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) SyncAll(ctx context.Context, opts driving.SyncOptions) (*driving.SyncSummary, error) {
	// 1. Load and validate settings
	settings, err := o.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	// 2. Build the stream registry for the current account
	if o.factory == nil {
		return nil, fmt.Errorf("create streams: stream factory not configured")
	}
	registry, err := o.factory.Create(ctx, *settings)
	if err != nil {
		return nil, fmt.Errorf("create streams: %w", err)
	}

	// 3. Resolve the stream selection
	selected, err := o.selectStreams(registry, opts)
	if err != nil {
		return nil, err
	}

	// 4. Seed the run state: stored bookmarks overlaid with any
	// caller-provided state
	state, err := o.loadState(ctx, opts.InitialState)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	// 5. Record the run
	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Streams:   selected,
	}
	o.saveRun(ctx, run)

	summary := &driving.SyncSummary{RunID: run.ID, Streams: selected}

	// 6. Sync each stream in catalog order
	var errs []error
	for _, name := range selected {
		stream, err := registry.Get(name)
		if err != nil {
			errs = append(errs, err)
			if !opts.Force {
				break
			}
			continue
		}

		count, err := o.syncStream(ctx, stream, settings, state)
		summary.RecordCount += count
		run.RecordCount += count
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", name, err))
			summary.FailedStreams = append(summary.FailedStreams, name)
			if !opts.Force {
				break
			}
		}
	}

	// 7. Close out the run record
	run.EndedAt = time.Now().UTC()
	run.Success = len(errs) == 0
	if joined := errors.Join(errs...); joined != nil {
		run.Error = joined.Error()
		o.saveRun(ctx, run)
		return summary, joined
	}
	o.saveRun(ctx, run)

	return summary, nil
}

// Status returns the live status for a stream.
func (o *SyncOrchestrator) Status(_ context.Context, stream string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[stream]; ok {
		// Return a copy to avoid race conditions
		return &driving.SyncStatus{
			Stream:         status.Stream,
			Running:        status.Running,
			RecordsEmitted: status.RecordsEmitted,
			ErrorCount:     status.ErrorCount,
		}, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{Stream: stream, Running: false}, nil
}

// selectStreams resolves the run's stream list: explicit names, then a
// catalog's selected entries, then every built-in stream.
func (o *SyncOrchestrator) selectStreams(registry driven.StreamRegistry, opts driving.SyncOptions) ([]string, error) {
	if len(opts.Streams) > 0 {
		for _, name := range opts.Streams {
			if _, err := registry.Get(name); err != nil {
				return nil, err
			}
		}
		return o.catalogOrder(registry, opts.Streams), nil
	}

	if opts.Catalog != nil {
		if err := opts.Catalog.Validate(registry.Names()); err != nil {
			return nil, err
		}
		return o.catalogOrder(registry, opts.Catalog.SelectedStreams()), nil
	}

	return registry.Names(), nil
}

// catalogOrder reorders the requested names into catalog order.
func (o *SyncOrchestrator) catalogOrder(registry driven.StreamRegistry, requested []string) []string {
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}
	ordered := make([]string, 0, len(requested))
	for _, name := range registry.Names() {
		if want[name] {
			ordered = append(ordered, name)
		}
	}
	return ordered
}

// loadState assembles the run's starting state from the store, then
// overlays the caller-provided state so a --state file wins.
func (o *SyncOrchestrator) loadState(ctx context.Context, initial *domain.State) (*domain.State, error) {
	state := domain.NewState()
	stored, err := o.stateStore.List(ctx)
	if err != nil {
		return nil, err
	}
	for stream, bookmark := range stored {
		state.Bookmarks[stream] = bookmark
	}
	state.Merge(initial)
	return state, nil
}

// syncStream runs one stream end to end: SCHEMA, records, state.
// Returns the number of records emitted.
func (o *SyncOrchestrator) syncStream(
	ctx context.Context,
	stream driven.Stream,
	settings *domain.Settings,
	state *domain.State,
) (int, error) {
	name := stream.Name()

	// 1. Resolve the schema and announce it before any record
	schema, err := stream.Schema(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve schema: %w", err)
	}
	entry := domain.NewCatalogEntry(
		name, schema, stream.KeyProperties(), stream.ReplicationMethod(), stream.ReplicationKey())
	if err := o.emitter.Schema(&entry); err != nil {
		return 0, fmt.Errorf("emit schema: %w", err)
	}

	// 2. Work out the starting bookmark
	bookmark := o.startBookmark(stream, settings, state)

	// 3. Initialise status tracking
	status := &driving.SyncStatus{Stream: name, Running: true}
	o.setStatus(name, status)
	defer o.clearStatus(name)

	logger.Info("Starting sync for stream %s", name)

	// 4. Drain the stream's channels
	records, streamErrs := stream.Sync(ctx, bookmark)
	count, err := o.consume(ctx, name, schema, state, records, streamErrs, status)

	logger.Metric("counter", "record_count", count, map[string]any{"stream": name})
	if err != nil {
		return count, err
	}

	logger.Info("Sync complete for %s: %d records, %d errors", name, count, status.ErrorCount)
	o.stopStatus(status)
	return count, nil
}

// startBookmark returns the stream's starting cursor: the stored
// bookmark, else the configured start date. Full-table streams always
// start from zero.
func (o *SyncOrchestrator) startBookmark(
	stream driven.Stream, settings *domain.Settings, state *domain.State,
) domain.Bookmark {
	if stream.ReplicationMethod() != domain.ReplicationIncremental {
		return domain.Bookmark{}
	}
	if bookmark, ok := state.Bookmark(stream.Name()); ok && !bookmark.Value.IsZero() {
		return bookmark
	}
	return domain.Bookmark{
		ReplicationKey: stream.ReplicationKey(),
		Value:          settings.StartDate.UTC(),
	}
}

// consume drains a stream's record and error channels, normalising and
// emitting each record and persisting state at checkpoints.
//
//nolint:gocognit // Orchestration function coordinating multiple async operations
func (o *SyncOrchestrator) consume(
	ctx context.Context,
	name string,
	schema *domain.Schema,
	state *domain.State,
	records <-chan domain.Record,
	streamErrs <-chan error,
	status *driving.SyncStatus,
) (int, error) {
	count := 0
	var complete *driven.SyncComplete

	// Drain both channels until each closes. The error channel is
	// buffered, so its SyncComplete sentinel may still be pending after
	// the record channel closes.
	for records != nil || streamErrs != nil {
		select {
		case <-ctx.Done():
			return count, ctx.Err()

		case err, ok := <-streamErrs:
			if !ok {
				streamErrs = nil
				continue
			}
			if cp, isCheckpoint := driven.IsCheckpoint(err); isCheckpoint {
				if err := o.persistBookmark(ctx, name, cp.Bookmark, state); err != nil {
					return count, err
				}
				continue
			}
			if sc, isComplete := driven.IsSyncComplete(err); isComplete {
				complete = sc
				continue
			}
			if err != nil {
				return count, err
			}

		case record, ok := <-records:
			if !ok {
				records = nil
				continue
			}

			record.Data = o.normalise(record.Data, schema)
			if err := o.emitter.Record(record); err != nil {
				return count, fmt.Errorf("emit record: %w", err)
			}
			count++
			o.bumpRecordsEmitted(status)
		}
	}

	// Persist the final bookmark and emit the closing state message.
	if complete != nil {
		if err := o.persistBookmark(ctx, name, complete.Bookmark, state); err != nil {
			return count, err
		}
	}
	if err := o.emitter.State(state); err != nil {
		return count, fmt.Errorf("emit state: %w", err)
	}
	return count, nil
}

// normalise projects a payload through the schema when a normaliser is
// configured.
func (o *SyncOrchestrator) normalise(data map[string]any, schema *domain.Schema) map[string]any {
	if o.normaliser == nil {
		return data
	}
	return o.normaliser.Normalise(data, schema)
}

// persistBookmark stores a checkpointed bookmark and emits the updated
// state. Zero bookmarks (full-table streams) are not stored: bookmarks
// never regress and full-table streams never write them.
func (o *SyncOrchestrator) persistBookmark(
	ctx context.Context, stream string, bookmark domain.Bookmark, state *domain.State,
) error {
	if bookmark.IsZero() {
		return nil
	}
	if current, ok := state.Bookmark(stream); ok && !bookmark.Value.After(current.Value) {
		return nil
	}
	state.SetBookmark(stream, bookmark.ReplicationKey, bookmark.Value)
	if err := o.stateStore.Save(ctx, stream, bookmark); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := o.emitter.State(state); err != nil {
		return fmt.Errorf("emit state: %w", err)
	}
	return nil
}

// saveRun persists run history when a run store is configured.
func (o *SyncOrchestrator) saveRun(ctx context.Context, run *domain.SyncRun) {
	if o.runStore == nil {
		return
	}
	if err := o.runStore.Save(ctx, run); err != nil {
		logger.Warn("Failed to record sync run %s: %v", run.ID, err)
		return
	}
	if !run.EndedAt.IsZero() {
		if err := o.runStore.Prune(ctx, runHistoryKeep); err != nil {
			logger.Debug("Failed to prune run history: %v", err)
		}
	}
}

// bumpRecordsEmitted increments a live status counter. Status may be
// read concurrently in daemon mode, so the write takes the lock.
func (o *SyncOrchestrator) bumpRecordsEmitted(status *driving.SyncStatus) {
	o.mu.Lock()
	status.RecordsEmitted++
	o.mu.Unlock()
}

// stopStatus marks a live status as no longer running.
func (o *SyncOrchestrator) stopStatus(status *driving.SyncStatus) {
	o.mu.Lock()
	status.Running = false
	o.mu.Unlock()
}

// setStatus sets the sync status for a stream.
func (o *SyncOrchestrator) setStatus(stream string, status *driving.SyncStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeSyncs[stream] = status
}

// clearStatus removes the sync status for a stream.
func (o *SyncOrchestrator) clearStatus(stream string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, stream)
}
