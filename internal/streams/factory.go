package streams

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Ensure Factory implements the port.
var _ driven.StreamFactory = (*Factory)(nil)

// Factory builds stream registries against the live Zendesk API.
type Factory struct{}

// NewFactory creates a stream factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds the registry for the account the settings describe.
func (f *Factory) Create(ctx context.Context, settings domain.Settings) (driven.StreamRegistry, error) {
	auth, err := zendesk.NewAuthenticator(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("build authenticator: %w", err)
	}
	client := zendesk.NewClient(settings, auth)
	return NewRegistry(client, settings), nil
}
