package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage upstream credentials",
	Long: `Authenticate against the configured Zendesk account.

Two methods are supported:
  - OAuth: 'zensync auth login' runs the browser authorization flow
    using the client ID/secret from 'zensync config init'.
  - API token: set auth.email and auth.api_token in the config; no
    login step is needed.

OAuth takes precedence when both are configured.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize via the browser OAuth flow",
	RunE:  runAuthLogin,
}

var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the stored credentials",
	RunE:  runAuthCheck,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authCheckCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	cmd.Println("Opening browser for authorization...")

	token, err := authService.Login(cmd.Context())
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Println("Authorization successful. Token stored.")
	if token.RefreshToken == "" {
		cmd.Println("No refresh token was issued; re-run 'zensync auth login' when the token expires.")
	}
	return nil
}

func runAuthCheck(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	account, err := authService.Check(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return errors.New("no credentials configured - run 'zensync config init' or 'zensync auth login'")
		}
		return fmt.Errorf("credential check failed: %w", err)
	}

	cmd.Printf("Authenticated via %s as %s <%s> (role: %s)\n",
		authService.Method(), account.Name, account.Email, account.Role)
	return nil
}
