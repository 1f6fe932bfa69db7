package streams

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

func TestListing_Sync(t *testing.T) {
	t.Run("filters locally against the starting bookmark", func(t *testing.T) {
		var server *httptest.Server
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/groups.json", r.URL.Path)
			if r.URL.Query().Get("cursor") == "" {
				fmt.Fprintf(w, `{
					"groups": [
						{"id": 1, "updated_at": "2024-01-10T00:00:00Z"},
						{"id": 2, "updated_at": "2024-01-20T00:00:00Z"}
					],
					"meta": {"has_more": true},
					"links": {"next": %q}
				}`, server.URL+"/groups.json?cursor=2")
				return
			}
			fmt.Fprint(w, `{
				"groups": [{"id": 3, "updated_at": "2024-01-15T00:00:00Z"}],
				"meta": {"has_more": false}
			}`)
		})
		server = httptest.NewServer(handler)
		t.Cleanup(server.Close)
		client := zendesk.NewClientWithBaseURL(server.URL, zendesk.NewAPITokenAuthenticator("a@example.com", "t"))
		stream := NewGroups(client, domain.Settings{})

		res := runSync(t, stream, domain.Bookmark{
			ReplicationKey: "updated_at",
			Value:          utc(2024, 1, 15, 0, 0, 0),
		})

		require.NoError(t, res.err)
		// Records updated before the bookmark are dropped; a record
		// updated exactly at the bookmark is re-emitted.
		assert.Equal(t, []int64{2, 3}, recordIDs(t, res.records))
		// The listing arrives in no particular order, so state is only
		// reported once the whole collection has been seen.
		assert.Empty(t, res.checkpoints)
		require.NotNil(t, res.complete)
		assert.Equal(t, utc(2024, 1, 20, 0, 0, 1), res.complete.Bookmark.Value)
	})

	t.Run("memberships without updated_at are synced when they have an id", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/group_memberships.json", r.URL.Path)
			fmt.Fprint(w, `{
				"group_memberships": [
					{"id": 7},
					{"note": "no id, no timestamp"},
					{"id": 8, "updated_at": "2024-01-20T00:00:00Z"}
				]
			}`)
		})
		client := newStreamClient(t, handler)
		stream := NewGroupMemberships(client, domain.Settings{})

		res := runSync(t, stream, domain.Bookmark{
			ReplicationKey: "updated_at",
			Value:          utc(2024, 1, 15, 0, 0, 0),
		})

		require.NoError(t, res.err)
		assert.Equal(t, []int64{7, 8}, recordIDs(t, res.records))
		require.NotNil(t, res.complete)
		assert.Equal(t, utc(2024, 1, 20, 0, 0, 1), res.complete.Bookmark.Value)
	})

	t.Run("missing updated_at fails the other listings", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"groups": [{"id": 1}]}`)
		})
		client := newStreamClient(t, handler)
		stream := NewGroups(client, domain.Settings{})

		res := runSync(t, stream, domain.Bookmark{
			ReplicationKey: "updated_at",
			Value:          utc(2024, 1, 15, 0, 0, 0),
		})

		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "groups: record missing updated_at")
		assert.Nil(t, res.complete)
	})
}
