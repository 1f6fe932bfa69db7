package streams

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// schemaFS contains the base stream schemas embedded at compile time.
//
//go:embed schemas/*.json
var schemaFS embed.FS

// loadSchema parses the embedded schema for a stream. Each call
// returns a fresh copy, so enrichment never leaks between runs.
func loadSchema(name string) (*domain.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load schema for %s: %w", name, err)
	}
	var schema domain.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema for %s: %w", name, err)
	}
	return &schema, nil
}
