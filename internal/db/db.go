// Package db manages the in-memory SQLite database backing a session log.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	name string
}

// DSN returns the data source name for an in-memory database called name.
// Nothing is written to disk.
func DSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory"
}

// New opens a fresh in-memory database and initializes the schema.
// The database lives as long as its single connection, so it is discarded
// on Close.
func New(name string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", DSN(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to a memory database sees its own copy.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	// Test connection
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		name: name,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Name returns the in-memory database name.
func (db *DB) Name() string {
	return db.name
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		accepted_at INTEGER NOT NULL,
		item TEXT NOT NULL,
		qty REAL NOT NULL DEFAULT 0,
		unit TEXT NOT NULL,
		category TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection and discards its contents.
func (db *DB) Close() error {
	return db.DB.Close()
}
