package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Print the stream catalog as JSON",
	Long: `Builds the catalog of available streams and prints it as JSON on
stdout. The catalog lists each stream's schema, key properties,
replication method and per-field metadata; custom ticket, user and
organization fields are fetched from the account and merged in.

Edit the catalog's "selected" metadata and pass it back with
'zensync sync --catalog' to control which streams are extracted.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	if discoveryService == nil {
		return errors.New("discovery service not configured")
	}

	catalog, err := discoveryService.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovering catalog: %w", err)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(catalog); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return nil
}
