package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketsEntry() CatalogEntry {
	schema := &Schema{
		Type: TypeList{"object"},
		Properties: map[string]*Schema{
			"id":                  NullableSchema("integer"),
			"subject":             NullableSchema("string"),
			"generated_timestamp": NullableSchema("integer"),
		},
	}
	return NewCatalogEntry("tickets", schema, []string{"id"}, ReplicationIncremental, "generated_timestamp")
}

func TestNewCatalogEntry_StreamMetadata(t *testing.T) {
	entry := ticketsEntry()

	assert.Equal(t, "tickets", entry.Stream)
	assert.Equal(t, "tickets", entry.TapStreamID)
	assert.Equal(t, []string{"id"}, entry.KeyProperties())
	assert.Equal(t, ReplicationIncremental, entry.ReplicationMethod())
	assert.Equal(t, "generated_timestamp", entry.ReplicationKey())
	assert.False(t, entry.IsSelected())
}

func TestNewCatalogEntry_FieldInclusion(t *testing.T) {
	entry := ticketsEntry()

	inclusions := make(map[string]string)
	for _, m := range entry.Metadata {
		if len(m.Breadcrumb) == 2 && m.Breadcrumb[0] == "properties" {
			inclusions[m.Breadcrumb[1]] = m.Metadata.Inclusion
		}
	}

	// Key properties and the replication key are automatic
	assert.Equal(t, InclusionAutomatic, inclusions["id"])
	assert.Equal(t, InclusionAutomatic, inclusions["generated_timestamp"])
	assert.Equal(t, InclusionAvailable, inclusions["subject"])
}

func TestNewCatalogEntry_FullTable(t *testing.T) {
	schema := &Schema{
		Type:       TypeList{"object"},
		Properties: map[string]*Schema{"name": NullableSchema("string")},
	}
	entry := NewCatalogEntry("tags", schema, []string{"name"}, ReplicationFullTable, "")

	assert.Equal(t, ReplicationFullTable, entry.ReplicationMethod())
	assert.Empty(t, entry.ReplicationKey())
}

func TestCatalogEntry_SetSelected(t *testing.T) {
	entry := ticketsEntry()

	entry.SetSelected(true)
	assert.True(t, entry.IsSelected())

	entry.SetSelected(false)
	assert.False(t, entry.IsSelected())
}

func TestCatalog_Get(t *testing.T) {
	catalog := &Catalog{Streams: []CatalogEntry{ticketsEntry()}}

	entry, ok := catalog.Get("tickets")
	require.True(t, ok)
	assert.Equal(t, "tickets", entry.TapStreamID)

	_, ok = catalog.Get("missing")
	assert.False(t, ok)
}

func TestCatalog_SelectedStreams_InOrder(t *testing.T) {
	schema := &Schema{Type: TypeList{"object"}, Properties: map[string]*Schema{"id": NullableSchema("integer")}}
	catalog := &Catalog{Streams: []CatalogEntry{
		NewCatalogEntry("tickets", schema, []string{"id"}, ReplicationIncremental, "updated_at"),
		NewCatalogEntry("users", schema, []string{"id"}, ReplicationIncremental, "updated_at"),
		NewCatalogEntry("tags", schema, []string{"name"}, ReplicationFullTable, ""),
	}}

	for _, name := range []string{"tags", "tickets"} {
		entry, ok := catalog.Get(name)
		require.True(t, ok)
		entry.SetSelected(true)
	}

	assert.Equal(t, []string{"tickets", "tags"}, catalog.SelectedStreams())
}

func TestCatalog_Validate(t *testing.T) {
	catalog := &Catalog{Streams: []CatalogEntry{ticketsEntry()}}

	assert.NoError(t, catalog.Validate([]string{"tickets", "users"}))

	err := catalog.Validate([]string{"users"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStream)
	assert.Contains(t, err.Error(), "tickets")
}
