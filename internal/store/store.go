package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// StreakKey is the key under which the streak counter is persisted.
const StreakKey = "streak"

// Store is a SQLite-backed key-value store holding the persisted streak.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps pragmas and ":memory:" databases consistent.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns the persisted streak, or 0 if none was saved yet.
func (s *Store) Load(ctx context.Context) (int, error) {
	v, err := s.Get(ctx, StreakKey)
	if err != nil {
		return 0, err
	}
	return parseStreak(v)
}

// Save persists the streak.
func (s *Store) Save(ctx context.Context, n int) error {
	return s.Set(ctx, StreakKey, strconv.Itoa(n))
}

// parseStreak decodes a stored streak; an empty value means no streak yet.
func parseStreak(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("stored streak %q is not a number: %w", v, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("stored streak %d is negative", n)
	}
	return n, nil
}
