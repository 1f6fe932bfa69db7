package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

// mockAuthService implements driving.AuthService for testing.
type mockAuthService struct {
	token   *domain.OAuthToken
	account *domain.Account
	method  domain.AuthMethod
	err     error
}

func (m *mockAuthService) Login(_ context.Context) (*domain.OAuthToken, error) {
	return m.token, m.err
}

func (m *mockAuthService) Check(_ context.Context) (*domain.Account, error) {
	return m.account, m.err
}

func (m *mockAuthService) Refresh(_ context.Context) error {
	return m.err
}

func (m *mockAuthService) Method() domain.AuthMethod {
	return m.method
}

func setupAuthTest(mock *mockAuthService) func() {
	old := authService
	authService = mock
	return func() {
		authService = old
	}
}

func execAuth(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append([]string{"auth"}, args...))
	defer func() { rootCmd.SetArgs(nil) }()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestAuthLoginCmd_Success(t *testing.T) {
	cleanup := setupAuthTest(&mockAuthService{
		token:  &domain.OAuthToken{AccessToken: "access", RefreshToken: "refresh"},
		method: domain.AuthMethodOAuth,
	})
	defer cleanup()

	out, err := execAuth(t, "login")

	require.NoError(t, err)
	assert.Contains(t, out, "Authorization successful")
	assert.NotContains(t, out, "No refresh token")
}

func TestAuthLoginCmd_WarnsWithoutRefreshToken(t *testing.T) {
	cleanup := setupAuthTest(&mockAuthService{
		token:  &domain.OAuthToken{AccessToken: "access"},
		method: domain.AuthMethodOAuth,
	})
	defer cleanup()

	out, err := execAuth(t, "login")

	require.NoError(t, err)
	assert.Contains(t, out, "No refresh token")
}

func TestAuthCheckCmd_PrintsAccount(t *testing.T) {
	cleanup := setupAuthTest(&mockAuthService{
		account: &domain.Account{ID: 7, Name: "Agent", Email: "agent@acme.test", Role: "admin"},
		method:  domain.AuthMethodAPIToken,
	})
	defer cleanup()

	out, err := execAuth(t, "check")

	require.NoError(t, err)
	assert.Contains(t, out, "agent@acme.test")
	assert.Contains(t, out, "api_token")
	assert.Contains(t, out, "admin")
}

func TestAuthCheckCmd_NoCredentials(t *testing.T) {
	cleanup := setupAuthTest(&mockAuthService{err: domain.ErrAuthRequired})
	defer cleanup()

	_, err := execAuth(t, "check")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials configured")
}

func TestAuthCheckCmd_InvalidCredentials(t *testing.T) {
	cleanup := setupAuthTest(&mockAuthService{err: domain.ErrAuthInvalid})
	defer cleanup()

	_, err := execAuth(t, "check")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential check failed")
}
