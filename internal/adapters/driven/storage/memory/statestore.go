package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
type StateStore struct {
	mu        sync.RWMutex
	bookmarks map[string]domain.Bookmark
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		bookmarks: make(map[string]domain.Bookmark),
	}
}

// Get retrieves a stream's bookmark.
func (s *StateStore) Get(_ context.Context, stream string) (*domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bookmark, ok := s.bookmarks[stream]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &bookmark, nil
}

// Save stores or updates a stream's bookmark.
func (s *StateStore) Save(_ context.Context, stream string, bookmark domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookmarks[stream] = bookmark
	return nil
}

// Delete removes a stream's bookmark.
func (s *StateStore) Delete(_ context.Context, stream string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookmarks, stream)
	return nil
}

// List returns every stored bookmark keyed by stream name.
func (s *StateStore) List(_ context.Context) (map[string]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Bookmark, len(s.bookmarks))
	for stream, bookmark := range s.bookmarks {
		out[stream] = bookmark
	}
	return out, nil
}
