package emit

import (
	"github.com/custodia-labs/zensync/internal/core/domain"
)

// Message type tags on the wire.
const (
	TypeSchema = "SCHEMA"
	TypeRecord = "RECORD"
	TypeState  = "STATE"
)

// timeExtractedFormat is the timestamp form downstream consumers expect
// on record messages: UTC with microsecond precision.
const timeExtractedFormat = "2006-01-02T15:04:05.000000Z"

// SchemaMessage announces a stream's record shape before its first
// record.
type SchemaMessage struct {
	Type               string         `json:"type"`
	Stream             string         `json:"stream"`
	Schema             *domain.Schema `json:"schema"`
	KeyProperties      []string       `json:"key_properties"`
	BookmarkProperties []string       `json:"bookmark_properties,omitempty"`
}

// RecordMessage carries one extracted record.
type RecordMessage struct {
	Type          string         `json:"type"`
	Stream        string         `json:"stream"`
	Record        map[string]any `json:"record"`
	TimeExtracted string         `json:"time_extracted,omitempty"`
}

// StateMessage carries the bookmark state. Downstream consumers persist
// the last state they have fully processed and hand it back on the next
// run.
type StateMessage struct {
	Type  string        `json:"type"`
	Value *domain.State `json:"value"`
}

// newSchemaMessage builds the schema message for a catalog entry.
func newSchemaMessage(entry *domain.CatalogEntry) SchemaMessage {
	keyProperties := entry.KeyProperties()
	if keyProperties == nil {
		keyProperties = []string{}
	}

	var bookmarkProperties []string
	if key := entry.ReplicationKey(); key != "" {
		bookmarkProperties = []string{key}
	}

	return SchemaMessage{
		Type:               TypeSchema,
		Stream:             entry.TapStreamID,
		Schema:             entry.Schema,
		KeyProperties:      keyProperties,
		BookmarkProperties: bookmarkProperties,
	}
}

// newRecordMessage builds the record message for an extracted record.
func newRecordMessage(record domain.Record) RecordMessage {
	message := RecordMessage{
		Type:   TypeRecord,
		Stream: record.Stream,
		Record: record.Data,
	}
	if !record.TimeExtracted.IsZero() {
		message.TimeExtracted = record.TimeExtracted.UTC().Format(timeExtractedFormat)
	}
	return message
}
