package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zensync/internal/core/domain"
)

func TestStateManager_Show(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tickets", domain.Bookmark{
		ReplicationKey: "generated_timestamp",
		Value:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Save(ctx, "users", domain.Bookmark{
		ReplicationKey: "updated_at",
		Value:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}))

	manager := NewStateManager(store)
	state, err := manager.Show(ctx)

	require.NoError(t, err)
	require.Len(t, state.Bookmarks, 2)
	assert.Equal(t, "generated_timestamp", state.Bookmarks["tickets"].ReplicationKey)
	assert.Equal(t, "updated_at", state.Bookmarks["users"].ReplicationKey)
}

func TestStateManager_Show_Empty(t *testing.T) {
	manager := NewStateManager(memory.NewStateStore())

	state, err := manager.Show(context.Background())

	require.NoError(t, err)
	assert.Empty(t, state.Bookmarks)
}

func TestStateManager_Reset_SingleStream(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tickets", domain.Bookmark{ReplicationKey: "updated_at", Value: time.Now().UTC()}))
	require.NoError(t, store.Save(ctx, "users", domain.Bookmark{ReplicationKey: "updated_at", Value: time.Now().UTC()}))

	manager := NewStateManager(store)
	require.NoError(t, manager.Reset(ctx, "tickets"))

	_, err := store.Get(ctx, "tickets")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Other streams keep their bookmarks
	_, err = store.Get(ctx, "users")
	assert.NoError(t, err)
}

func TestStateManager_Reset_AllStreams(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tickets", domain.Bookmark{ReplicationKey: "updated_at", Value: time.Now().UTC()}))
	require.NoError(t, store.Save(ctx, "users", domain.Bookmark{ReplicationKey: "updated_at", Value: time.Now().UTC()}))

	manager := NewStateManager(store)
	require.NoError(t, manager.Reset(ctx, ""))

	bookmarks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
}
