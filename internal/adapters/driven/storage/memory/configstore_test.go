package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("subdomain", "acme"))

	val, ok := store.Get("subdomain")
	assert.True(t, ok)
	assert.Equal(t, "acme", val)
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("subdomain", "acme"))
	require.NoError(t, store.Set("subdomain", "globex"))

	assert.Equal(t, "globex", store.GetString("subdomain"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore()

	val, ok := store.Get("auth.api_token")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("subdomain", "acme")
	_ = store.Set("sync.search_window_seconds", 86400)
	_ = store.Set("window_int64", int64(3600))
	_ = store.Set("window_float", float64(7200.9))
	_ = store.Set("scheduler.enabled", true)
	_ = store.Set("streams", []string{"tickets", "users"})

	assert.Equal(t, "acme", store.GetString("subdomain"))
	assert.Equal(t, 86400, store.GetInt("sync.search_window_seconds"))
	assert.Equal(t, 3600, store.GetInt("window_int64"))
	assert.Equal(t, 7200, store.GetInt("window_float"))
	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, []string{"tickets", "users"}, store.GetStringSlice("streams"))

	// Wrong types fall back to zero values
	assert.Equal(t, "", store.GetString("sync.search_window_seconds"))
	assert.Equal(t, 0, store.GetInt("subdomain"))
	assert.False(t, store.GetBool("subdomain"))
	assert.Nil(t, store.GetStringSlice("subdomain"))
}

func TestConfigStore_GetStringSlice_FromAnySlice(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("streams", []any{"tickets", "users", 42})

	// Non-string elements are skipped
	assert.Equal(t, []string{"tickets", "users"}, store.GetStringSlice("streams"))
}

func TestConfigStore_SaveAndLoad_NoOp(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("subdomain", "acme")
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	// Data survives the no-op round trip
	assert.Equal(t, "acme", store.GetString("subdomain"))
}

func TestConfigStore_Path(t *testing.T) {
	store := NewConfigStore()
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_MultipleInstances(t *testing.T) {
	store1 := NewConfigStore()
	store2 := NewConfigStore()

	_ = store1.Set("subdomain", "acme")
	_ = store2.Set("subdomain", "globex")

	assert.Equal(t, "acme", store1.GetString("subdomain"))
	assert.Equal(t, "globex", store2.GetString("subdomain"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_ = store.Set("key-"+string(rune('A'+id%26)), id)
		}(i)
		go func(id int) {
			defer wg.Done()
			_ = store.GetInt("key-" + string(rune('A'+id%26)))
		}(i)
	}
	wg.Wait()

	// Should not panic or deadlock
	_, _ = store.Get("key-A")
}
