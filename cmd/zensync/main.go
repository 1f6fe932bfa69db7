// Command zensync extracts Zendesk Support data as Singer messages.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/zensync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/zensync/internal/adapters/driven/emit"
	"github.com/custodia-labs/zensync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/zensync/internal/adapters/driving/cli"
	"github.com/custodia-labs/zensync/internal/adapters/driving/oauth"
	"github.com/custodia-labs/zensync/internal/core/services"
	"github.com/custodia-labs/zensync/internal/streams"
	"github.com/custodia-labs/zensync/internal/zendesk"
)

// Build metadata, set via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Driven adapters
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer store.Close()

	// Messages own stdout; each one is flushed as written
	emitter := emit.NewWriter(os.Stdout)

	factory := streams.NewFactory()

	// Core services
	settingsService := services.NewSettingsService(configStore)
	syncOrchestrator := services.NewSyncOrchestrator(
		settingsService,
		store.StateStore(),
		store.SyncRunStore(),
		factory,
		emitter,
		emit.NewNormaliser(),
	)
	discoveryService := services.NewDiscoveryService(settingsService, factory)
	stateManager := services.NewStateManager(store.StateStore())
	authService := services.NewAuthService(
		settingsService,
		oauth.NewBrowserAuthorizer(),
		zendesk.NewVerifier(),
	)
	scheduler := services.NewScheduler(
		settingsService.GetSchedulerConfig(),
		store.SchedulerStore(),
		syncOrchestrator,
		authService,
	)

	cli.SetServices(cli.Services{
		Settings:  settingsService,
		Auth:      authService,
		Discovery: discoveryService,
		Sync:      syncOrchestrator,
		State:     stateManager,
		Scheduler: scheduler,
		Config:    configStore,
	})

	return cli.Execute(version)
}
