package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/priorcoder/institute-manager/pkg/config"
)

// Store wraps the embedded SQLite database file.
type Store struct {
	DB   *sqlx.DB
	path string
}

// NewSQLite opens (creating if needed) the institute database and ensures the schema.
func NewSQLite(cfg config.DatabaseConfig) (*Store, error) {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, busy)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// A single writer keeps the short-lived-connection semantics of the
	// original tool without lock contention inside the process.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: db, path: cfg.Path}, nil
}

// Path returns the location of the live database file.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Snapshot writes an internally consistent copy of the database to destPath
// using SQLite's native VACUUM INTO, which is safe while connections are open.
// destPath must not already exist.
func (s *Store) Snapshot(ctx context.Context, destPath string) error {
	if _, err := s.DB.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("snapshot database: %w", err)
	}
	return nil
}

// Validate opens the database at path and confirms it exposes a readable
// schema catalog.
func Validate(path string) error {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return fmt.Errorf("open restored database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	var tables []string
	if err := db.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table'"); err != nil {
		return fmt.Errorf("read schema catalog: %w", err)
	}
	return nil
}

func initSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			fee INTEGER NOT NULL,
			duration INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id TEXT UNIQUE,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			address TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id INTEGER,
			student_name TEXT,
			course_name TEXT,
			course_fee INTEGER,
			course_duration INTEGER,
			enrollment_date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			enrollment_id INTEGER,
			amount INTEGER,
			receipt_no TEXT UNIQUE,
			date TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
