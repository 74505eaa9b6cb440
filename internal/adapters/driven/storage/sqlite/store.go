package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/reposcope/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
)

// DatabaseFileName is the cache database inside the data directory.
const DatabaseFileName = "cache.db"

// Store is a SQLite-backed blob cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.BlobCache = (*Store)(nil)

// NewStore opens (or creates) the cache database in dataDir.
// If dataDir is empty, defaults to ~/.reposcope.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".reposcope")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db, path: dbPath}

	if err := store.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every embedded up migration newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// Get returns the cached payload for url.
func (s *Store) Get(ctx context.Context, url string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM blob_cache WHERE url = ?", url,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying blob: %w", err)
	}
	return payload, nil
}

// Put stores payload for url, replacing any existing entry.
func (s *Store) Put(ctx context.Context, url, payload string) error {
	if url == "" {
		return fmt.Errorf("%w: empty url", domain.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blob_cache (url, payload, size, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			payload = excluded.payload,
			size = excluded.size,
			fetched_at = excluded.fetched_at
	`, url, payload, len(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	return nil
}

// Delete removes the entry for url.
func (s *Store) Delete(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM blob_cache WHERE url = ?", url); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// Stats reports the entry count and total payload bytes.
func (s *Store) Stats(ctx context.Context) (int, int64, error) {
	var entries int
	var size int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size), 0) FROM blob_cache",
	).Scan(&entries, &size)
	if err != nil {
		return 0, 0, fmt.Errorf("querying cache stats: %w", err)
	}
	return entries, size, nil
}

// Clear removes every cached blob.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM blob_cache"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
