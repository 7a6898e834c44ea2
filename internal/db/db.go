package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	type TEXT NOT NULL,
	duration_sec INTEGER NOT NULL DEFAULT 0,
	meta TEXT DEFAULT ''
);
CREATE TABLE IF NOT EXISTS metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	fatigue_score INTEGER,
	near_work_min INTEGER,
	breaks INTEGER,
	contrast_min_readable REAL
);`

// Open returns a handle on the sqlite database file. WAL journal mode and
// foreign key enforcement are set through the DSN so that every new
// connection gets them.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", path)
	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// no idle connections: each operation runs on a freshly opened
	// connection which is closed again right after
	database.SetMaxIdleConns(0)

	return database, nil
}

// Setup creates the sessions and metrics tables if they do not exist yet.
// Safe to call repeatedly, existing data is left untouched.
func Setup(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := database.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
