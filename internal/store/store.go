package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// migration upgrades a dataset file to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order for files whose user_version is below version.
// schema.sql always describes the latest layout, so each statement must be
// a no-op on fresh files.
var migrations = []migration{
	{
		version: 1,
		name:    "batch lookup index",
		stmt: `CREATE INDEX IF NOT EXISTS idx_genxdata_batches_table
			ON genxdata_batches(table_name, batch_index)`,
	},
}

// Store is an open SQLite dataset file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the dataset file at path, applying pragmas and
// migrations. Opening the same file repeatedly is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}

	// One connection: SQLite has a single writer, and an in-memory
	// database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens a throwaway in-memory store.
func OpenMemory() (*Store, error) {
	return Open(MemoryPath)
}

// Path returns the path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) init() error {
	for _, pragma := range s.pragmas() {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q to %s: %w", pragma, s.path, err)
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create bookkeeping tables in %s: %w", s.path, err)
	}
	return s.migrate()
}

// pragmas tunes file stores for bulk inserts. In-memory stores have no
// journal file, so WAL does not apply.
func (s *Store) pragmas() []string {
	if s.path == MemoryPath {
		return []string{"PRAGMA journal_mode = MEMORY"}
	}
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
}

// migrate applies pending migrations and records the new user_version.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	latest := version
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := s.db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate %s to v%d (%s): %w", s.path, m.version, m.name, err)
		}
		latest = m.version
	}
	if latest == version {
		return nil
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", latest)); err != nil {
		return fmt.Errorf("write user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
