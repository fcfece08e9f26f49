// Package store provides SQLite persistence for sessions, measurements
// and range-of-motion goals.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding every recorded session.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath, creating it if needed, and brings the
// schema up to date. Pragmas ride the DSN so every pooled connection gets
// them: foreign keys so measurements cascade with their session, WAL and a
// busy timeout because the API serves reads while a completing session
// batch-writes its measurements.
func New(dbPath string) (*Store, error) {
	dsn := "file:" + dbPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the pool for schema inspection in tests.
func (s *Store) DB() *sql.DB {
	return s.db
}
