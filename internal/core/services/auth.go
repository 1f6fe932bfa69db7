package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
	"github.com/custodia-labs/zensync/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService manages upstream credentials: the browser login flow,
// credential validation and proactive token refresh.
type AuthService struct {
	settings   driving.SettingsService
	authorizer driven.Authorizer
	verifier   driven.AccountVerifier
}

// NewAuthService creates a new auth service.
func NewAuthService(
	settings driving.SettingsService,
	authorizer driven.Authorizer,
	verifier driven.AccountVerifier,
) *AuthService {
	return &AuthService{
		settings:   settings,
		authorizer: authorizer,
		verifier:   verifier,
	}
}

// Login runs the browser OAuth flow and persists the resulting token.
func (s *AuthService) Login(ctx context.Context) (*domain.OAuthToken, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings.Subdomain == "" {
		return nil, fmt.Errorf("%w: subdomain is required before login", domain.ErrInvalidInput)
	}
	if settings.Auth.ClientID == "" {
		return nil, fmt.Errorf("%w: auth.client_id is required for OAuth login", domain.ErrInvalidInput)
	}

	token, err := s.authorizer.Authorize(ctx, settings.Subdomain, settings.Auth)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}

	if err := s.settings.SetOAuthToken(token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	logger.Debug("OAuth login complete for %s.zendesk.com", settings.Subdomain)
	return token, nil
}

// Check validates the stored credentials against the API and returns
// the authenticated account.
func (s *AuthService) Check(ctx context.Context) (*domain.Account, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings.Auth.Method() == domain.AuthMethodNone {
		return nil, domain.ErrAuthRequired
	}

	account, err := s.verifier.Verify(ctx, *settings)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	return account, nil
}

// Refresh renews the stored OAuth access token. A no-op for accounts
// without a refresh token: static tokens and API tokens do not expire
// on a schedule.
func (s *AuthService) Refresh(ctx context.Context) error {
	settings, err := s.settings.Get()
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	if settings.Auth.Method() != domain.AuthMethodOAuth || settings.Auth.RefreshToken == "" {
		return nil
	}

	token, err := s.authorizer.Refresh(ctx, settings.Subdomain, settings.Auth)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	if err := s.settings.SetOAuthToken(token); err != nil {
		return fmt.Errorf("persist refreshed token: %w", err)
	}

	logger.Debug("Refreshed OAuth token for %s.zendesk.com", settings.Subdomain)
	return nil
}

// Method returns the active authentication method.
func (s *AuthService) Method() domain.AuthMethod {
	settings, err := s.settings.Get()
	if err != nil {
		return domain.AuthMethodNone
	}
	return settings.Auth.Method()
}
