// Package domain defines the core business entities for Zensync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Stream: A syncable Zendesk entity collection
//   - CatalogEntry: A discovered stream with schema and metadata
//   - Record: A single extracted entity payload
//   - State: Per-stream bookmarks for incremental sync
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
