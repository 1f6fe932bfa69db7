package driven

import "github.com/custodia-labs/zensync/internal/core/domain"

// Emitter writes extraction output downstream.
// The CLI implementation writes JSON lines to stdout; tests capture
// messages in memory.
type Emitter interface {
	// Schema announces a stream's schema. Emitted before the stream's
	// first record.
	Schema(entry *domain.CatalogEntry) error

	// Record emits one normalised record.
	Record(record domain.Record) error

	// State emits the current bookmark state. Downstream consumers
	// persist the last state they have fully processed.
	State(state *domain.State) error
}
