package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// mockDiscoveryService implements driving.DiscoveryService for testing.
type mockDiscoveryService struct {
	catalog *domain.Catalog
	err     error
}

func (m *mockDiscoveryService) Discover(_ context.Context) (*domain.Catalog, error) {
	return m.catalog, m.err
}

func (m *mockDiscoveryService) Select(catalog *domain.Catalog, streams []string) error {
	for _, name := range streams {
		entry, ok := catalog.Get(name)
		if !ok {
			return domain.ErrUnknownStream
		}
		entry.SetSelected(true)
	}
	return nil
}

func testCatalog() *domain.Catalog {
	schema := &domain.Schema{
		Type: domain.TypeList{"object"},
		Properties: map[string]*domain.Schema{
			"id":         {Type: domain.TypeList{"null", "integer"}},
			"updated_at": {Type: domain.TypeList{"null", "string"}, Format: "date-time"},
		},
	}
	entry := domain.NewCatalogEntry("tickets", schema, []string{"id"}, domain.ReplicationIncremental, "updated_at")
	return &domain.Catalog{Streams: []domain.CatalogEntry{entry}}
}

func setupDiscoverTest(mock *mockDiscoveryService) func() {
	old := discoveryService
	discoveryService = mock
	return func() {
		discoveryService = old
	}
}

func TestDiscoverCmd_PrintsCatalogJSON(t *testing.T) {
	cleanup := setupDiscoverTest(&mockDiscoveryService{catalog: testCatalog()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"discover"})
	defer func() { rootCmd.SetArgs(nil) }()

	err := rootCmd.Execute()
	require.NoError(t, err)

	var parsed domain.Catalog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed.Streams, 1)
	assert.Equal(t, "tickets", parsed.Streams[0].TapStreamID)
	assert.Equal(t, "updated_at", parsed.Streams[0].ReplicationKey())
}

func TestDiscoverCmd_DiscoveryError(t *testing.T) {
	cleanup := setupDiscoverTest(&mockDiscoveryService{err: errors.New("upstream down")})
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"discover"})
	defer func() { rootCmd.SetArgs(nil) }()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestDiscoverCmd_NotConfigured(t *testing.T) {
	cleanup := setupDiscoverTest(nil)
	discoveryService = nil
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"discover"})
	defer func() { rootCmd.SetArgs(nil) }()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestStreamsCmd_PrintsTable(t *testing.T) {
	cleanup := setupDiscoverTest(&mockDiscoveryService{catalog: testCatalog()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"streams"})
	defer func() { rootCmd.SetArgs(nil) }()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "STREAM")
	assert.Contains(t, out, "tickets")
	assert.Contains(t, out, "INCREMENTAL")
	assert.Contains(t, out, "updated_at")
}
