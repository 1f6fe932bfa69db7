// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Stream: Extracts records for one entity collection
//   - StreamRegistry: Provides the built-in streams
//   - Emitter: Writes schemas, records and state downstream
//   - StateStore: Bookmark persistence
//   - Authenticator: Upstream credential application
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - SchedulerStore: Task persistence, only used in daemon mode
//   - SyncRunStore: Run history, only used in daemon mode and `runs`
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or stream implementation package
package driven
