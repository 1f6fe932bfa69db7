package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySubdomain       = "subdomain"
	keyStartDate       = "start_date"
	keyAccessToken     = "auth.access_token"
	keyRefreshToken    = "auth.refresh_token"
	keyClientID        = "auth.client_id"
	keyClientSecret    = "auth.client_secret"
	keyEmail           = "auth.email"
	keyAPIToken        = "auth.api_token"
	keyMarketName      = "marketplace.name"
	keyMarketOrgID     = "marketplace.organization_id"
	keyMarketAppID     = "marketplace.app_id"
	keySearchWindow    = "sync.search_window_seconds"
	keyRequestTimeout  = "sync.request_timeout"
	keySchedulerPrefix = "scheduler."
)

// SettingsService manages the connector configuration stored in the
// config file.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings with defaults applied.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	settings.Subdomain = s.configStore.GetString(keySubdomain)
	settings.Auth = domain.AuthSettings{
		AccessToken:  s.configStore.GetString(keyAccessToken),
		RefreshToken: s.configStore.GetString(keyRefreshToken),
		ClientID:     s.configStore.GetString(keyClientID),
		ClientSecret: s.configStore.GetString(keyClientSecret),
		Email:        s.configStore.GetString(keyEmail),
		APIToken:     s.configStore.GetString(keyAPIToken),
	}
	settings.Marketplace = domain.MarketplaceSettings{
		Name:           s.configStore.GetString(keyMarketName),
		OrganizationID: s.configStore.GetString(keyMarketOrgID),
		AppID:          s.configStore.GetString(keyMarketAppID),
	}

	if raw := s.configStore.GetString(keyStartDate); raw != "" {
		startDate, err := domain.ParseBookmarkTime(raw)
		if err != nil {
			return nil, fmt.Errorf("parse start_date: %w", err)
		}
		settings.StartDate = startDate
	}
	if window := s.configStore.GetInt(keySearchWindow); window > 0 {
		settings.SearchWindowSeconds = window
	}
	if raw := s.configStore.GetString(keyRequestTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse request_timeout: %w", err)
		}
		settings.RequestTimeout = timeout
	}

	return &settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}

	values := map[string]any{
		keySubdomain:    settings.Subdomain,
		keyAccessToken:  settings.Auth.AccessToken,
		keyRefreshToken: settings.Auth.RefreshToken,
		keyClientID:     settings.Auth.ClientID,
		keyClientSecret: settings.Auth.ClientSecret,
		keyEmail:        settings.Auth.Email,
		keyAPIToken:     settings.Auth.APIToken,
	}
	if !settings.StartDate.IsZero() {
		values[keyStartDate] = settings.StartDate.UTC().Format(domain.BookmarkTimeFormat)
	}
	if settings.Marketplace.Name != "" {
		values[keyMarketName] = settings.Marketplace.Name
	}
	if settings.Marketplace.OrganizationID != "" {
		values[keyMarketOrgID] = settings.Marketplace.OrganizationID
	}
	if settings.Marketplace.AppID != "" {
		values[keyMarketAppID] = settings.Marketplace.AppID
	}
	if settings.SearchWindowSeconds > 0 {
		values[keySearchWindow] = settings.SearchWindowSeconds
	}
	if settings.RequestTimeout > 0 {
		values[keyRequestTimeout] = settings.RequestTimeout.String()
	}

	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// SetCredentials stores API-token credentials.
func (s *SettingsService) SetCredentials(email, apiToken string) error {
	if email == "" || apiToken == "" {
		return fmt.Errorf("%w: email and API token are both required", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyEmail, email); err != nil {
		return fmt.Errorf("save email: %w", err)
	}
	if err := s.configStore.Set(keyAPIToken, apiToken); err != nil {
		return fmt.Errorf("save api token: %w", err)
	}
	return nil
}

// SetOAuthToken stores an OAuth token.
func (s *SettingsService) SetOAuthToken(token *domain.OAuthToken) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty OAuth token", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if token.RefreshToken != "" {
		if err := s.configStore.Set(keyRefreshToken, token.RefreshToken); err != nil {
			return fmt.Errorf("save refresh token: %w", err)
		}
	}
	return nil
}

// Validate checks the settings are complete enough to sync.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get(keySchedulerPrefix + "enabled"); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerPrefix + "enabled")
	}

	// Per-task config
	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDOAuthRefresh: "oauth_refresh",
		domain.TaskIDStreamSync:   "stream_sync",
	}

	for taskID, configKey := range taskKeys {
		prefix := keySchedulerPrefix + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Interval is a duration string like "45m" or "1h"
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}
