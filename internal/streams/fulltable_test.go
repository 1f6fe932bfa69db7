package streams

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

func TestTags_Sync(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tags.json", r.URL.Path)
		fmt.Fprint(w, `{"tags": [{"name": "vip", "count": 10}, {"name": "beta", "count": 2}]}`)
	})
	client := newStreamClient(t, handler)
	stream := NewTags(client, domain.Settings{})

	res := runSync(t, stream, domain.Bookmark{})

	require.NoError(t, res.err)
	require.Len(t, res.records, 2)
	assert.Equal(t, "vip", res.records[0].Data["name"])
	assert.Equal(t, "beta", res.records[1].Data["name"])
	// Full-table streams never write bookmarks.
	assert.Empty(t, res.checkpoints)
	require.NotNil(t, res.complete)
	assert.True(t, res.complete.Bookmark.IsZero())
}

func TestSLAPolicies_Sync(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/slas/policies.json", r.URL.Path)
		fmt.Fprint(w, `{"sla_policies": [{"id": 1, "title": "Gold"}, {"id": 2, "title": "Silver"}]}`)
	})
	client := newStreamClient(t, handler)
	stream := NewSLAPolicies(client, domain.Settings{})

	res := runSync(t, stream, domain.Bookmark{})

	require.NoError(t, res.err)
	assert.Equal(t, []int64{1, 2}, recordIDs(t, res.records))
	require.NotNil(t, res.complete)
	assert.True(t, res.complete.Bookmark.IsZero())
}
