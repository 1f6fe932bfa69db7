// Package logger provides stderr logging for the Zensync CLI.
// Records and state go to stdout, so all logging stays on stderr.
// Info and Warn always print; Debug requires the --verbose flag.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "[WARN] "+format+"\n", args...)
}

// Metric prints a metric line: a counter or timer with its tags,
// JSON-encoded so downstream log processors can parse it.
func Metric(metricType, name string, value any, tags map[string]any) {
	point := map[string]any{
		"type":   metricType,
		"metric": name,
		"value":  value,
	}
	if len(tags) > 0 {
		point["tags"] = tags
	}
	encoded, err := json.Marshal(point)
	if err != nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "METRIC: %s\n", encoded)
}
