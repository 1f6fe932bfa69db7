package driven

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// StateStore persists stream bookmarks between runs.
type StateStore interface {
	// Get retrieves a stream's bookmark.
	// Returns domain.ErrNotFound if no bookmark is stored.
	Get(ctx context.Context, stream string) (*domain.Bookmark, error)

	// Save stores or updates a stream's bookmark.
	Save(ctx context.Context, stream string, bookmark domain.Bookmark) error

	// Delete removes a stream's bookmark.
	Delete(ctx context.Context, stream string) error

	// List returns every stored bookmark keyed by stream name.
	List(ctx context.Context) (map[string]domain.Bookmark, error)
}
