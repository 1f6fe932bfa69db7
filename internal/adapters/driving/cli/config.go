package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/zensync/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage connector configuration",
	Long:  `View and edit the zensync configuration file.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive configuration setup",
	Long: `Walks through the required configuration: account subdomain, the
start date for the first sync, and credentials. Secrets are read
without echo and stored in the config file with 0600 permissions.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a single configuration key. Keys use dotted paths, e.g.:

  zensync config set subdomain acme
  zensync config set sync.search_window_seconds 86400
  zensync config set scheduler.stream_sync.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	subdomain, err := promptString(cmd, reader, "Zendesk subdomain ({subdomain}.zendesk.com)", configStore.GetString("subdomain"))
	if err != nil {
		return err
	}
	if subdomain == "" {
		return fmt.Errorf("%w: subdomain is required", domain.ErrInvalidInput)
	}
	if err := configStore.Set("subdomain", subdomain); err != nil {
		return fmt.Errorf("saving subdomain: %w", err)
	}

	startDate, err := promptString(cmd, reader, "Start date (e.g. 2024-01-01T00:00:00Z)", configStore.GetString("start_date"))
	if err != nil {
		return err
	}
	if _, err := domain.ParseBookmarkTime(startDate); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if err := configStore.Set("start_date", startDate); err != nil {
		return fmt.Errorf("saving start date: %w", err)
	}

	method, err := promptString(cmd, reader, "Auth method: api_token or oauth", "api_token")
	if err != nil {
		return err
	}

	switch strings.ToLower(method) {
	case "api_token":
		email, err := promptString(cmd, reader, "Agent email", configStore.GetString("auth.email"))
		if err != nil {
			return err
		}
		apiToken, err := promptSecret(cmd, reader, "API token")
		if err != nil {
			return err
		}
		if email == "" || apiToken == "" {
			return fmt.Errorf("%w: email and API token are required", domain.ErrInvalidInput)
		}
		if err := configStore.Set("auth.email", email); err != nil {
			return fmt.Errorf("saving email: %w", err)
		}
		if err := configStore.Set("auth.api_token", apiToken); err != nil {
			return fmt.Errorf("saving API token: %w", err)
		}

	case "oauth":
		clientID, err := promptString(cmd, reader, "OAuth client ID", configStore.GetString("auth.client_id"))
		if err != nil {
			return err
		}
		clientSecret, err := promptSecret(cmd, reader, "OAuth client secret")
		if err != nil {
			return err
		}
		if clientID == "" {
			return fmt.Errorf("%w: client ID is required", domain.ErrInvalidInput)
		}
		if err := configStore.Set("auth.client_id", clientID); err != nil {
			return fmt.Errorf("saving client ID: %w", err)
		}
		if clientSecret != "" {
			if err := configStore.Set("auth.client_secret", clientSecret); err != nil {
				return fmt.Errorf("saving client secret: %w", err)
			}
		}
		cmd.Println("Run 'zensync auth login' to complete the OAuth flow.")

	default:
		return fmt.Errorf("%w: unknown auth method %q", domain.ErrInvalidInput, method)
	}

	cmd.Printf("Configuration written to %s\n", configStore.Path())
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("[account]")
	cmd.Printf("  subdomain:  %s\n", valueOrUnset(settings.Subdomain))
	if settings.StartDate.IsZero() {
		cmd.Printf("  start_date: (not set)\n")
	} else {
		cmd.Printf("  start_date: %s\n", settings.StartDate.UTC().Format(domain.BookmarkTimeFormat))
	}
	cmd.Println()

	cmd.Println("[auth]")
	cmd.Printf("  method:     %s\n", settings.Auth.Method())
	if settings.Auth.Email != "" {
		cmd.Printf("  email:      %s\n", settings.Auth.Email)
	}
	if settings.Auth.APIToken != "" {
		cmd.Printf("  api_token:  %s\n", maskSecret(settings.Auth.APIToken))
	}
	if settings.Auth.AccessToken != "" {
		cmd.Printf("  access_token: %s\n", maskSecret(settings.Auth.AccessToken))
	}
	if settings.Auth.ClientID != "" {
		cmd.Printf("  client_id:  %s\n", settings.Auth.ClientID)
	}
	cmd.Println()

	cmd.Println("[sync]")
	cmd.Printf("  search_window_seconds: %d\n", settings.SearchWindowSeconds)
	cmd.Printf("  request_timeout:       %s\n", settings.RequestTimeout)

	if err := settingsService.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Status: incomplete (%v)\n", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Booleans and integers keep their TOML type; everything else is a string
	var value any = raw
	if b, err := strconv.ParseBool(raw); err == nil && isBoolLiteral(raw) {
		value = b
	} else if n, err := strconv.Atoi(raw); err == nil {
		value = n
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

// isBoolLiteral restricts bool parsing to the unambiguous spellings,
// so "1" and "0" stay integers.
func isBoolLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

// promptString asks for a line of input, returning the default when
// the user just presses enter.
func promptString(cmd *cobra.Command, reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}

// promptSecret reads a secret without echoing it to the terminal.
// Falls back to plain reading when stdin is not a terminal.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	cmd.Printf("%s: ", label)

	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	secret, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// maskSecret shows only the last four characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
