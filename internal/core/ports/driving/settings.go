package driving

import "github.com/custodia-labs/zensync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetCredentials stores API-token credentials.
	SetCredentials(email, apiToken string) error

	// SetOAuthToken stores an OAuth token.
	SetOAuthToken(token *domain.OAuthToken) error

	// Validate checks the settings are complete enough to sync.
	Validate() error

	// GetSchedulerConfig returns the daemon scheduler configuration
	// with defaults applied.
	GetSchedulerConfig() domain.SchedulerConfig
}
