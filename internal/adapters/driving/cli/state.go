package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and reset stored bookmarks",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored bookmarks as Singer state JSON",
	RunE:  runStateShow,
}

var stateResetCmd = &cobra.Command{
	Use:   "reset [stream]",
	Short: "Remove a stream's bookmark, or all bookmarks",
	Long: `Removes the named stream's stored bookmark so its next sync starts
from start_date again. With no argument, every bookmark is removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStateReset,
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
	rootCmd.AddCommand(stateCmd)
}

func runStateShow(cmd *cobra.Command, _ []string) error {
	if stateManager == nil {
		return errors.New("state service not configured")
	}

	state, err := stateManager.Show(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return nil
}

func runStateReset(cmd *cobra.Command, args []string) error {
	if stateManager == nil {
		return errors.New("state service not configured")
	}

	stream := ""
	if len(args) > 0 {
		stream = args[0]
	}

	if err := stateManager.Reset(cmd.Context(), stream); err != nil {
		return fmt.Errorf("resetting state: %w", err)
	}

	if stream == "" {
		cmd.Println("All bookmarks removed.")
	} else {
		cmd.Printf("Bookmark for %s removed.\n", stream)
	}
	return nil
}
