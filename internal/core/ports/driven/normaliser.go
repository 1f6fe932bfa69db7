package driven

import "github.com/custodia-labs/zensync/internal/core/domain"

// Normaliser projects raw API payloads through a stream schema before
// emission: declared fields are coerced to their schema type and
// date-time strings are rewritten to UTC.
type Normaliser interface {
	// Normalise returns a normalised copy of data. The input is not
	// mutated; undeclared fields pass through unchanged.
	Normalise(data map[string]any, schema *domain.Schema) map[string]any
}
