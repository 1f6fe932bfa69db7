package driving

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// DiscoveryService produces the stream catalog.
type DiscoveryService interface {
	// Discover builds the catalog for all streams, fetching custom
	// field definitions for streams that carry them.
	Discover(ctx context.Context) (*domain.Catalog, error)

	// Select marks the named streams selected in the catalog.
	// Unknown names return domain.ErrUnknownStream.
	Select(catalog *domain.Catalog, streams []string) error
}
