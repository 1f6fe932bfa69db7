package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zensync/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled syncs in the foreground",
	Long: `Runs the background scheduler: periodic stream syncs and OAuth token
refresh at the intervals configured under [scheduler]. The config file
is watched and reloaded on change, so credentials and intervals can be
updated without a restart. Stops cleanly on SIGINT or SIGTERM.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reload settings when the config file changes
	if configStore != nil {
		watcher, err := watchConfig(configStore.Path())
		if err != nil {
			logger.Warn("config watch unavailable: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	logger.Info("daemon started")

	err := scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil {
		logger.Warn("scheduler stop: %v", stopErr)
	}

	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("daemon stopped")
	return nil
}

// watchConfig reloads the config store when its file is rewritten.
func watchConfig(path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := configStore.Load(); err != nil {
					logger.Warn("config reload failed: %v", err)
					continue
				}
				logger.Info("config reloaded from %s", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watch error: %v", err)
			}
		}
	}()

	return watcher, nil
}
