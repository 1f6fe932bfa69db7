// Package cli implements the zensync command-line interface.
//
// Commands emit Singer-style JSON messages on stdout; all diagnostics
// go to stderr so the output stream stays pipeable.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zensync/internal/core/ports/driven"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
	"github.com/custodia-labs/zensync/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// Services injected by the composition root. Commands nil-guard each
// one so partial wiring (as in tests) fails with a clear message.
var (
	settingsService  driving.SettingsService
	authService      driving.AuthService
	discoveryService driving.DiscoveryService
	syncRunner       driving.SyncRunner
	stateManager     driving.StateManager
	scheduler        driving.Scheduler
	configStore      driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "zensync",
	Short: "Sync Zendesk Support data as Singer messages",
	Long: `zensync extracts tickets, users, organizations and the rest of the
Zendesk Support API as a stream of Singer SCHEMA/RECORD/STATE messages
on stdout, tracking incremental bookmarks between runs.

Typical usage:
  zensync config init              # configure subdomain and credentials
  zensync discover > catalog.json  # inspect the stream catalog
  zensync sync --streams tickets   # extract, piped to a Singer target`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging on stderr")
}

// Services bundles everything the commands need.
type Services struct {
	Settings  driving.SettingsService
	Auth      driving.AuthService
	Discovery driving.DiscoveryService
	Sync      driving.SyncRunner
	State     driving.StateManager
	Scheduler driving.Scheduler
	Config    driven.ConfigStore
}

// SetServices injects service implementations into the commands.
func SetServices(s Services) {
	settingsService = s.Settings
	authService = s.Auth
	discoveryService = s.Discovery
	syncRunner = s.Sync
	stateManager = s.State
	scheduler = s.Scheduler
	configStore = s.Config
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
