// Package emit implements the Emitter driven port: JSON-line output of
// SCHEMA, RECORD and STATE messages for downstream consumers.
//
// Adapters:
//   - Writer: line-per-message JSON on an io.Writer (stdout in the CLI)
//   - Capture: in-memory emitter for tests
//
// Normaliser is the schema projection applied to records before they
// reach an emitter.
package emit
