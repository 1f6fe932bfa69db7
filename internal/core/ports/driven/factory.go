package driven

import (
	"context"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// StreamFactory builds the stream registry for the current settings.
// The registry is rebuilt per run so credential and subdomain changes
// take effect without restarting a long-lived process.
type StreamFactory interface {
	// Create builds the registry of built-in streams against the
	// account the settings describe. Fails fast when no credentials
	// are configured.
	Create(ctx context.Context, settings domain.Settings) (StreamRegistry, error)
}
