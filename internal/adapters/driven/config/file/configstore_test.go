package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("subdomain", "acme"))

	val, ok := store.Get("subdomain")
	assert.True(t, ok)
	assert.Equal(t, "acme", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("subdomain", "acme"))
	require.NoError(t, store.Set("sync.search_window_seconds", 86400))
	require.NoError(t, store.Set("scheduler.enabled", true))
	require.NoError(t, store.Set("streams", []string{"tickets", "users"}))

	assert.Equal(t, "acme", store.GetString("subdomain"))
	assert.Equal(t, 86400, store.GetInt("sync.search_window_seconds"))
	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, []string{"tickets", "users"}, store.GetStringSlice("streams"))

	// Missing or mistyped keys return zero values
	assert.Equal(t, "", store.GetString("sync.search_window_seconds"))
	assert.Equal(t, 0, store.GetInt("subdomain"))
	assert.False(t, store.GetBool("subdomain"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("subdomain", "acme"))
	require.NoError(t, store1.Set("auth.email", "agent@acme.test"))
	require.NoError(t, store1.Set("auth.api_token", "secret"))
	require.NoError(t, store1.Set("sync.request_timeout", 30))

	// A fresh instance loads the same data from disk
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "acme", store2.GetString("subdomain"))
	assert.Equal(t, "agent@acme.test", store2.GetString("auth.email"))
	assert.Equal(t, "secret", store2.GetString("auth.api_token"))
	assert.Equal(t, 30, store2.GetInt("sync.request_timeout"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("auth.email", "agent@acme.test"))
	require.NoError(t, store.Set("scheduler.stream_sync.interval_minutes", 60))

	// Dotted keys serialise as TOML tables, not quoted literal keys
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[auth]")
	assert.Contains(t, string(data), "[scheduler]")
	assert.NotContains(t, string(data), `"auth.email"`)

	// And flatten back on reload
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "agent@acme.test", store2.GetString("auth.email"))
	assert.Equal(t, 60, store2.GetInt("scheduler.stream_sync.interval_minutes"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("auth.api_token", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("subdomain", "acme"))
	require.NoError(t, store.Set("subdomain", "globex"))

	assert.Equal(t, "globex", store.GetString("subdomain"))
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# comment only\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("subdomain")
	assert.False(t, ok)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nested)
	require.NoError(t, err)
	require.NoError(t, store.Set("subdomain", "acme"))

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
