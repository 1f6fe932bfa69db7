package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
)

// Ensure DiscoveryService implements the interface.
var _ driving.DiscoveryService = (*DiscoveryService)(nil)

// DiscoveryService builds the stream catalog. Streams with
// account-specific custom fields fetch their definitions while the
// catalog is assembled, so discovery needs working credentials.
type DiscoveryService struct {
	settings driving.SettingsService
	factory  driven.StreamFactory
}

// NewDiscoveryService creates a new discovery service.
func NewDiscoveryService(settings driving.SettingsService, factory driven.StreamFactory) *DiscoveryService {
	return &DiscoveryService{settings: settings, factory: factory}
}

// Discover builds the catalog for all streams.
func (s *DiscoveryService) Discover(ctx context.Context) (*domain.Catalog, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	registry, err := s.factory.Create(ctx, *settings)
	if err != nil {
		return nil, fmt.Errorf("create streams: %w", err)
	}

	catalog := &domain.Catalog{}
	for _, stream := range registry.List() {
		schema, err := stream.Schema(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", stream.Name(), err)
		}
		entry := domain.NewCatalogEntry(
			stream.Name(), schema, stream.KeyProperties(),
			stream.ReplicationMethod(), stream.ReplicationKey())
		catalog.Streams = append(catalog.Streams, entry)
	}

	return catalog, nil
}

// Select marks the named streams selected in the catalog.
func (s *DiscoveryService) Select(catalog *domain.Catalog, streams []string) error {
	if catalog == nil {
		return domain.ErrInvalidInput
	}
	for _, name := range streams {
		entry, ok := catalog.Get(name)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownStream, name)
		}
		entry.SetSelected(true)
	}
	return nil
}
