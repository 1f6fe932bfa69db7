package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/zensync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.zensync/data/state.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".zensync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StateStore returns a StateStore interface backed by this store.
func (s *Store) StateStore() driven.StateStore {
	return &stateStore{store: s}
}

// SyncRunStore returns a SyncRunStore interface backed by this store.
func (s *Store) SyncRunStore() driven.SyncRunStore {
	return &syncRunStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== State Store ====================

// stateStore implements driven.StateStore.
type stateStore struct {
	store *Store
}

var _ driven.StateStore = (*stateStore)(nil)

// Get retrieves a stream's bookmark.
func (s *stateStore) Get(ctx context.Context, stream string) (*domain.Bookmark, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT replication_key, value
		FROM bookmarks WHERE stream = ?
	`, stream)

	var replicationKey, value string
	if err := row.Scan(&replicationKey, &value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning bookmark: %w", err)
	}

	parsed, err := domain.ParseBookmarkTime(value)
	if err != nil {
		return nil, fmt.Errorf("parsing bookmark for %s: %w", stream, err)
	}

	return &domain.Bookmark{ReplicationKey: replicationKey, Value: parsed}, nil
}

// Save stores or updates a stream's bookmark.
func (s *stateStore) Save(ctx context.Context, stream string, bookmark domain.Bookmark) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO bookmarks (stream, replication_key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(stream) DO UPDATE SET
			replication_key = excluded.replication_key,
			value = excluded.value,
			updated_at = excluded.updated_at
	`, stream, bookmark.ReplicationKey,
		bookmark.Value.UTC().Format(domain.BookmarkTimeFormat),
		time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving bookmark: %w", err)
	}
	return nil
}

// Delete removes a stream's bookmark.
func (s *stateStore) Delete(ctx context.Context, stream string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE stream = ?", stream)
	if err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}
	return nil
}

// List returns every stored bookmark keyed by stream name.
func (s *stateStore) List(ctx context.Context) (map[string]domain.Bookmark, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT stream, replication_key, value
		FROM bookmarks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make(map[string]domain.Bookmark)
	for rows.Next() {
		var stream, replicationKey, value string
		if err := rows.Scan(&stream, &replicationKey, &value); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}

		parsed, err := domain.ParseBookmarkTime(value)
		if err != nil {
			return nil, fmt.Errorf("parsing bookmark for %s: %w", stream, err)
		}
		bookmarks[stream] = domain.Bookmark{ReplicationKey: replicationKey, Value: parsed}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}

// ==================== Sync Run Store ====================

// syncRunStore implements driven.SyncRunStore.
type syncRunStore struct {
	store *Store
}

var _ driven.SyncRunStore = (*syncRunStore)(nil)

// Save stores or updates a run by ID.
func (s *syncRunStore) Save(ctx context.Context, run *domain.SyncRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	streamsJSON, err := json.Marshal(run.Streams)
	if err != nil {
		return fmt.Errorf("marshalling streams: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, started_at, ended_at, streams, record_count, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			streams = excluded.streams,
			record_count = excluded.record_count,
			success = excluded.success,
			error = excluded.error
	`, run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		formatNullableTime(run.EndedAt),
		string(streamsJSON),
		run.RecordCount,
		boolToInt(run.Success),
		nullString(run.Error))

	if err != nil {
		return fmt.Errorf("saving sync run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *syncRunStore) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at, streams, record_count, success, error
		FROM sync_runs WHERE id = ?
	`, id)

	run, err := scanSyncRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// List returns recent runs, most recent first.
func (s *syncRunStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	query := `
		SELECT id, started_at, ended_at, streams, record_count, success, error
		FROM sync_runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanSyncRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}

	return runs, nil
}

// Prune removes old runs, keeping the most recent 'keep'.
func (s *syncRunStore) Prune(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_runs
		WHERE id NOT IN (
			SELECT id FROM sync_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning sync runs: %w", err)
	}
	return nil
}

// scanSyncRun scans one sync run row via the given scan function.
func scanSyncRun(scan func(dest ...any) error) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var startedAt string
	var endedAt, errMsg sql.NullString
	var streamsJSON string
	var success int

	if err := scan(&run.ID, &startedAt, &endedAt, &streamsJSON,
		&run.RecordCount, &success, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		run.StartedAt = t
	}
	run.EndedAt = parseNullableTime(endedAt)
	run.Success = success == 1
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	if streamsJSON != "" {
		if err := json.Unmarshal([]byte(streamsJSON), &run.Streams); err != nil {
			return nil, fmt.Errorf("unmarshalling streams: %w", err)
		}
	}

	return &run, nil
}
