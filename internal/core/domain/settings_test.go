package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validSettings() Settings {
	s := DefaultSettings()
	s.Subdomain = "acme"
	s.StartDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Auth = AuthSettings{Email: "agent@acme.test", APIToken: "token"}
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, DefaultSearchWindowSeconds, s.SearchWindowSeconds)
	assert.Equal(t, DefaultRequestTimeout, s.RequestTimeout)
	assert.Empty(t, s.Subdomain)
	assert.True(t, s.StartDate.IsZero())
}

func TestSettings_Validate_Valid(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestSettings_Validate_MissingSubdomain(t *testing.T) {
	s := validSettings()
	s.Subdomain = ""

	err := s.Validate()

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "subdomain")
}

func TestSettings_Validate_MissingStartDate(t *testing.T) {
	s := validSettings()
	s.StartDate = time.Time{}

	err := s.Validate()

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "start date")
}

func TestSettings_Validate_NoCredentials(t *testing.T) {
	s := validSettings()
	s.Auth = AuthSettings{}

	assert.ErrorIs(t, s.Validate(), ErrAuthRequired)
}

func TestSettings_Validate_SearchWindowTooSmall(t *testing.T) {
	s := validSettings()
	s.SearchWindowSeconds = 0

	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
}

func TestSettings_BaseURL(t *testing.T) {
	s := validSettings()

	assert.Equal(t, "https://acme.zendesk.com/api/v2", s.BaseURL())
}

func TestAuthSettings_Method(t *testing.T) {
	tests := []struct {
		name string
		auth AuthSettings
		want AuthMethod
	}{
		{"none", AuthSettings{}, AuthMethodNone},
		{"api token", AuthSettings{Email: "a@b.c", APIToken: "t"}, AuthMethodAPIToken},
		{"email alone is not enough", AuthSettings{Email: "a@b.c"}, AuthMethodNone},
		{"access token", AuthSettings{AccessToken: "at"}, AuthMethodOAuth},
		{"refresh token alone still oauth", AuthSettings{RefreshToken: "rt"}, AuthMethodOAuth},
		{"oauth wins over api token", AuthSettings{AccessToken: "at", Email: "a@b.c", APIToken: "t"}, AuthMethodOAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auth.Method())
		})
	}
}
