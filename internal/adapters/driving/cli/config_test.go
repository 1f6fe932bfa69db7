package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zensync/internal/core/services"
)

func setupConfigTest() (*memory.ConfigStore, func()) {
	oldStore := configStore
	oldSettings := settingsService

	store := memory.NewConfigStore()
	configStore = store
	settingsService = services.NewSettingsService(store)

	return store, func() {
		configStore = oldStore
		settingsService = oldSettings
	}
}

func execConfig(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"config"}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestConfigSetCmd_String(t *testing.T) {
	store, cleanup := setupConfigTest()
	defer cleanup()

	out, err := execConfig(t, "", "set", "subdomain", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "Set subdomain")
	assert.Equal(t, "acme", store.GetString("subdomain"))
}

func TestConfigSetCmd_TypedValues(t *testing.T) {
	store, cleanup := setupConfigTest()
	defer cleanup()

	_, err := execConfig(t, "", "set", "scheduler.enabled", "true")
	require.NoError(t, err)
	_, err = execConfig(t, "", "set", "sync.search_window_seconds", "86400")
	require.NoError(t, err)

	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, 86400, store.GetInt("sync.search_window_seconds"))
}

func TestConfigInitCmd_APIToken(t *testing.T) {
	store, cleanup := setupConfigTest()
	defer cleanup()

	// subdomain, start date, method, email, api token (stdin is not a
	// terminal here, so the secret falls back to plain reading)
	stdin := "acme\n2024-01-01T00:00:00Z\napi_token\nagent@acme.test\nsecret-token\n"
	out, err := execConfig(t, stdin, "init")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written")
	assert.Equal(t, "acme", store.GetString("subdomain"))
	assert.Equal(t, "2024-01-01T00:00:00Z", store.GetString("start_date"))
	assert.Equal(t, "agent@acme.test", store.GetString("auth.email"))
	assert.Equal(t, "secret-token", store.GetString("auth.api_token"))
}

func TestConfigInitCmd_OAuth(t *testing.T) {
	store, cleanup := setupConfigTest()
	defer cleanup()

	stdin := "acme\n2024-01-01T00:00:00Z\noauth\nclient-id\nclient-secret\n"
	out, err := execConfig(t, stdin, "init")

	require.NoError(t, err)
	assert.Contains(t, out, "zensync auth login")
	assert.Equal(t, "client-id", store.GetString("auth.client_id"))
	assert.Equal(t, "client-secret", store.GetString("auth.client_secret"))
}

func TestConfigInitCmd_InvalidStartDate(t *testing.T) {
	_, cleanup := setupConfigTest()
	defer cleanup()

	stdin := "acme\nnot-a-date\n"
	_, err := execConfig(t, stdin, "init")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")
}

func TestConfigInitCmd_UnknownAuthMethod(t *testing.T) {
	_, cleanup := setupConfigTest()
	defer cleanup()

	stdin := "acme\n2024-01-01T00:00:00Z\nbasic\n"
	_, err := execConfig(t, stdin, "init")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auth method")
}

func TestConfigShowCmd_MasksSecrets(t *testing.T) {
	store, cleanup := setupConfigTest()
	defer cleanup()

	require.NoError(t, store.Set("subdomain", "acme"))
	require.NoError(t, store.Set("start_date", "2024-01-01T00:00:00Z"))
	require.NoError(t, store.Set("auth.email", "agent@acme.test"))
	require.NoError(t, store.Set("auth.api_token", "super-secret-token"))

	out, err := execConfig(t, "", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "api_token")
	assert.NotContains(t, out, "super-secret-token")
	assert.Contains(t, out, "****oken")
}

func TestConfigShowCmd_ReportsIncomplete(t *testing.T) {
	_, cleanup := setupConfigTest()
	defer cleanup()

	out, err := execConfig(t, "", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "incomplete")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "****6789", maskSecret("123456789"))
}
