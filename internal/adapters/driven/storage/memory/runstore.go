package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
)

// Ensure SyncRunStore implements the interface.
var _ driven.SyncRunStore = (*SyncRunStore)(nil)

// SyncRunStore is an in-memory implementation of driven.SyncRunStore.
type SyncRunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.SyncRun
}

// NewSyncRunStore creates a new in-memory run store.
func NewSyncRunStore() *SyncRunStore {
	return &SyncRunStore{
		runs: make(map[string]domain.SyncRun),
	}
}

// Save stores or updates a run by ID.
func (s *SyncRunStore) Save(_ context.Context, run *domain.SyncRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

// Get retrieves a run by ID.
func (s *SyncRunStore) Get(_ context.Context, id string) (*domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// List returns recent runs, most recent first.
func (s *SyncRunStore) List(_ context.Context, limit int) ([]domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]domain.SyncRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Prune removes old runs, keeping the most recent 'keep'.
func (s *SyncRunStore) Prune(ctx context.Context, keep int) error {
	runs, err := s.List(ctx, 0)
	if err != nil {
		return err
	}
	if len(runs) <= keep {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, run := range runs[keep:] {
		delete(s.runs, run.ID)
	}
	return nil
}
