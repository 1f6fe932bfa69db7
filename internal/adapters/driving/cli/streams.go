package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List available streams",
	Long:  `Prints a table of the available streams with their replication method, replication key and key properties.`,
	RunE:  runStreams,
}

func init() {
	rootCmd.AddCommand(streamsCmd)
}

func runStreams(cmd *cobra.Command, _ []string) error {
	if discoveryService == nil {
		return errors.New("discovery service not configured")
	}

	catalog, err := discoveryService.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovering catalog: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STREAM\tREPLICATION\tREPLICATION KEY\tKEY PROPERTIES")
	for i := range catalog.Streams {
		entry := &catalog.Streams[i]
		key := entry.ReplicationKey()
		if key == "" {
			key = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.TapStreamID,
			entry.ReplicationMethod(),
			key,
			strings.Join(entry.KeyProperties(), ","))
	}
	return w.Flush()
}
