package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

func ticketsEntry() *domain.CatalogEntry {
	schema := &domain.Schema{
		Type: domain.TypeList{"object"},
		Properties: map[string]*domain.Schema{
			"id":                  domain.NullableSchema("integer"),
			"generated_timestamp": domain.NullableSchema("integer"),
			"status":              domain.NullableSchema("string"),
		},
	}
	entry := domain.NewCatalogEntry(domain.StreamTickets, schema, []string{"id"},
		domain.ReplicationIncremental, "generated_timestamp")
	return &entry
}

func TestWriter_Schema(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	require.NoError(t, writer.Schema(ticketsEntry()))

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))

	var decoded struct {
		Type               string         `json:"type"`
		Stream             string         `json:"stream"`
		Schema             *domain.Schema `json:"schema"`
		KeyProperties      []string       `json:"key_properties"`
		BookmarkProperties []string       `json:"bookmark_properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "SCHEMA", decoded.Type)
	assert.Equal(t, "tickets", decoded.Stream)
	assert.Equal(t, []string{"id"}, decoded.KeyProperties)
	assert.Equal(t, []string{"generated_timestamp"}, decoded.BookmarkProperties)
	require.NotNil(t, decoded.Schema)
	assert.Contains(t, decoded.Schema.Properties, "status")
}

func TestWriter_SchemaWithoutKeys(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	schema := &domain.Schema{
		Type:       domain.TypeList{"object"},
		Properties: map[string]*domain.Schema{"name": domain.NullableSchema("string")},
	}
	entry := domain.NewCatalogEntry(domain.StreamSLAPolicies, schema, nil,
		domain.ReplicationFullTable, "")

	require.NoError(t, writer.Schema(&entry))

	assert.Contains(t, buf.String(), `"key_properties":[]`)
	assert.NotContains(t, buf.String(), "bookmark_properties")
}

func TestWriter_Record(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	record := domain.Record{
		Stream:        domain.StreamTags,
		Data:          map[string]any{"name": "billing"},
		TimeExtracted: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, writer.Record(record))

	assert.Equal(t,
		`{"type":"RECORD","stream":"tags","record":{"name":"billing"},"time_extracted":"2024-01-01T00:00:00.000000Z"}`+"\n",
		buf.String())
}

func TestWriter_RecordWithoutTimeExtracted(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	require.NoError(t, writer.Record(domain.Record{
		Stream: domain.StreamTags,
		Data:   map[string]any{"name": "billing"},
	}))

	assert.NotContains(t, buf.String(), "time_extracted")
}

func TestWriter_State(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	state := domain.NewState()
	state.SetBookmark(domain.StreamTickets, "generated_timestamp",
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	require.NoError(t, writer.State(state))

	assert.Equal(t,
		`{"type":"STATE","value":{"bookmarks":{"tickets":{"generated_timestamp":"2024-01-02T03:04:05Z"}}}}`+"\n",
		buf.String())
}

func TestWriter_OneMessagePerLine(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	require.NoError(t, writer.Schema(ticketsEntry()))
	require.NoError(t, writer.Record(domain.Record{Stream: domain.StreamTickets, Data: map[string]any{"id": 1}}))
	require.NoError(t, writer.State(domain.NewState()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		var decoded map[string]any
		assert.NoError(t, json.Unmarshal([]byte(line), &decoded))
	}
}

func TestCapture(t *testing.T) {
	t.Run("records emission order", func(t *testing.T) {
		capture := NewCapture()

		require.NoError(t, capture.Schema(ticketsEntry()))
		require.NoError(t, capture.Record(domain.Record{Stream: domain.StreamTickets, Data: map[string]any{"id": 1}}))
		require.NoError(t, capture.Record(domain.Record{Stream: domain.StreamTags, Data: map[string]any{"name": "vip"}}))
		require.NoError(t, capture.State(domain.NewState()))

		assert.Equal(t, []string{"SCHEMA:tickets", "RECORD:tickets", "RECORD:tags", "STATE"}, capture.Sequence())
		assert.Len(t, capture.Records(), 2)
		assert.Len(t, capture.RecordsFor(domain.StreamTickets), 1)
	})

	t.Run("clones captured state", func(t *testing.T) {
		capture := NewCapture()
		state := domain.NewState()
		state.SetBookmark(domain.StreamTickets, "generated_timestamp", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

		require.NoError(t, capture.State(state))
		state.SetBookmark(domain.StreamTickets, "generated_timestamp", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		captured := capture.LastState()
		require.NotNil(t, captured)
		bookmark, ok := captured.Bookmark(domain.StreamTickets)
		require.True(t, ok)
		assert.Equal(t, 2024, bookmark.Value.Year())
	})

	t.Run("last state is nil when nothing emitted", func(t *testing.T) {
		assert.Nil(t, NewCapture().LastState())
	})
}
