package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hpungsan/holocron/internal/config"
	"github.com/hpungsan/holocron/internal/errors"
	_ "modernc.org/sqlite"
)

// DatabaseName identifies the local database. The file lives at baseDir/planets.db.
const DatabaseName = "PlanetsDatabase"

// CurrentSchemaVersion is the latest schema version.
const CurrentSchemaVersion = 1

const dbFile = "planets.db"

// State is the lifecycle state of a Store connection.
type State int

const (
	StateUninitialized State = iota
	StateOpen
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateDestroyed:
		return "destroyed"
	default:
		return "uninitialized"
	}
}

// Store is the shared handle to the local database.
// Every operation calls Open first, so a destroyed store is reopened
// (and recreated empty) on next use.
type Store struct {
	baseDir string
	cfg     *config.Config

	mu    sync.Mutex
	db    *sql.DB
	state State

	// ingestMu serializes ingestion cycles against this store.
	ingestMu sync.Mutex
}

// New returns an unopened Store rooted at baseDir.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.holocron.
func New(baseDir string, cfg *config.Config) *Store {
	return &Store{baseDir: baseDir, cfg: cfg}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.baseDir, dbFile)
}

// State reports the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LockIngest acquires the ingestion lock and returns its release function.
func (s *Store) LockIngest() func() {
	s.ingestMu.Lock()
	return s.ingestMu.Unlock
}

// Open establishes the connection, creating both partitions and seeding the
// cursor if absent. Safe to call repeatedly and concurrently.
func (s *Store) Open(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// conn returns the open connection, opening it first if needed.
func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateOpen && s.db != nil {
		return s.db, nil
	}

	db, err := open(ctx, s.baseDir)
	if err != nil {
		return nil, errors.NewConnection(err)
	}
	ConfigurePool(db, s.cfg)

	if s.state == StateDestroyed {
		slog.Debug("reopening destroyed store", "path", s.Path())
	}
	s.db = db
	s.state = StateOpen
	return db, nil
}

// Close releases the connection without deleting data.
// The next operation reopens it.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.state = StateUninitialized
	return err
}

// Destroy closes the connection and deletes the local database.
// In-flight transactions against the old connection fail.
func (s *Store) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("close before destroy failed", "error", err)
		}
		s.db = nil
	}

	path := s.Path()
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return errors.NewConnection(fmt.Errorf("failed to delete %s: %w", p, err))
		}
	}

	s.state = StateDestroyed
	slog.Info("store destroyed", "database", DatabaseName, "path", path)
	return nil
}

// open opens the SQLite database at baseDir/planets.db and applies migrations.
func open(ctx context.Context, baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to all pooled connections
	dbPath := filepath.Join(baseDir, dbFile)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate creates the schema based on user_version and seeds the cursor.
func migrate(ctx context.Context, db *sql.DB) error {
	version, err := GetUserVersion(ctx, db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS planets (
		  key   INTEGER PRIMARY KEY AUTOINCREMENT,
		  value TEXT NOT NULL CHECK (json_valid(value))
		);

		CREATE TABLE IF NOT EXISTS metadata (
		  key   TEXT PRIMARY KEY,
		  value TEXT NOT NULL CHECK (json_valid(value))
		);
		`
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)`,
			CursorKey, `{"next":null}`,
		); err != nil {
			return fmt.Errorf("failed to seed cursor: %w", err)
		}
		if err := SetUserVersion(ctx, db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(ctx context.Context, db *sql.DB) error {
	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(ctx context.Context, db *sql.DB, version int) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
