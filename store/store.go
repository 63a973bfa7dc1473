package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

var (
	ErrNotInitialized = errors.New("store not initialized")
)

// Store wraps a single DuckDB database handle. A Store is opened with
// NewMemoryStore or NewFileStore and must be closed by the caller.
type Store struct {
	db   *sql.DB
	path string // empty for in-memory databases
}

// NewMemoryStore opens an ephemeral in-memory database.
func NewMemoryStore() (*Store, error) {
	return open("")
}

// NewFileStore opens (or creates) a database file at path.
func NewFileStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path required")
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single logical writer: one pooled connection keeps every operation
	// on the same session, which also pins in-memory databases to a
	// stable catalog.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying handle for queries and transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Name returns a short display name for the database.
func (s *Store) Name() string {
	if s.path == "" {
		return "memory"
	}
	return filepath.Base(s.path)
}

// IsInitialized returns true if the store has a usable handle.
func (s *Store) IsInitialized() bool {
	return s != nil && s.db != nil
}

func (s *Store) ensureInitialized() error {
	if !s.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Begin starts a transaction with the engine's default isolation.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s.db.BeginTx(ctx, nil)
}

// isAlreadyExists reports whether err is a DDL conflict for an object
// that already exists. Idempotent setup treats these as no-ops.
func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}

// execTolerant runs a DDL statement, swallowing "already exists"
// conflicts.
func (s *Store) execTolerant(ctx context.Context, stmt string) error {
	if _, err := s.db.ExecContext(ctx, stmt); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("exec %q: %w", firstWords(stmt, 4), err)
	}
	return nil
}

// firstWords truncates a statement for error messages.
func firstWords(stmt string, n int) string {
	fields := strings.Fields(stmt)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
