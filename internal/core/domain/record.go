package domain

import "time"

// Record represents a single entity payload extracted from a stream.
// It is the stream's output before normalisation.
type Record struct {
	// Stream is the name of the stream that produced the record.
	Stream string

	// Data is the decoded entity payload.
	Data map[string]any

	// TimeExtracted is when the record was fetched, in UTC.
	TimeExtracted time.Time
}

// NewRecord builds a record stamped with the current UTC time.
func NewRecord(stream string, data map[string]any) Record {
	return Record{
		Stream:        stream,
		Data:          data,
		TimeExtracted: time.Now().UTC(),
	}
}

// ID returns the record's "id" field if present. Zendesk entity IDs
// arrive as JSON numbers and decode to float64.
func (r Record) ID() (int64, bool) {
	switch v := r.Data["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
