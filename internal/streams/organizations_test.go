package streams

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

func TestOrganizations_Sync(t *testing.T) {
	t.Run("advances two seconds past the newest updated_at", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/incremental/organizations.json", r.URL.Path)
			require.Equal(t, "1704067200", r.URL.Query().Get("start_time"))
			fmt.Fprint(w, `{
				"organizations": [
					{"id": 1, "updated_at": "2024-01-02T03:04:05Z"},
					{"id": 2, "updated_at": "2024-01-01T12:00:00Z"},
					{"id": 3}
				],
				"end_time": 1704164645,
				"end_of_stream": true,
				"count": 3
			}`)
		})
		client := newStreamClient(t, handler)
		stream := NewOrganizations(client, domain.Settings{})

		res := runSync(t, stream, domain.Bookmark{
			ReplicationKey: "updated_at",
			Value:          utc(2024, 1, 1, 0, 0, 0),
		})

		require.NoError(t, res.err)
		// A record without updated_at still syncs; it just cannot move
		// the bookmark.
		assert.Equal(t, []int64{1, 2, 3}, recordIDs(t, res.records))
		require.NotNil(t, res.complete)
		assert.Equal(t, "updated_at", res.complete.Bookmark.ReplicationKey)
		// One second from the export walk, one from the bookmark store.
		assert.Equal(t, utc(2024, 1, 2, 3, 4, 7), res.complete.Bookmark.Value)
	})

	t.Run("interrupted export fails the stream", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{
				"organizations": [{"id": 1, "updated_at": "2024-01-02T03:04:05Z"}],
				"end_of_stream": false
			}`)
		})
		client := newStreamClient(t, handler)
		stream := NewOrganizations(client, domain.Settings{})

		res := runSync(t, stream, domain.Bookmark{
			ReplicationKey: "updated_at",
			Value:          utc(2024, 1, 1, 0, 0, 0),
		})

		require.Error(t, res.err)
		assert.Nil(t, res.complete)
	})
}
