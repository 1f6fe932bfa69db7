package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
)

// Ensure StateManager implements the interface.
var _ driving.StateManager = (*StateManager)(nil)

// StateManager inspects and resets stored bookmarks.
type StateManager struct {
	store driven.StateStore
}

// NewStateManager creates a new state manager.
func NewStateManager(store driven.StateStore) *StateManager {
	return &StateManager{store: store}
}

// Show returns the stored state for all streams.
func (m *StateManager) Show(ctx context.Context) (*domain.State, error) {
	bookmarks, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	state := domain.NewState()
	for stream, bookmark := range bookmarks {
		state.Bookmarks[stream] = bookmark
	}
	return state, nil
}

// Reset removes the named stream's bookmark, or every bookmark when
// stream is empty. Resetting re-extracts from the configured start
// date on the next run.
func (m *StateManager) Reset(ctx context.Context, stream string) error {
	if stream != "" {
		if err := m.store.Delete(ctx, stream); err != nil {
			return fmt.Errorf("delete bookmark for %s: %w", stream, err)
		}
		return nil
	}

	bookmarks, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}
	for name := range bookmarks {
		if err := m.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete bookmark for %s: %w", name, err)
		}
	}
	return nil
}
