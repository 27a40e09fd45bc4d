// Package db opens the folio SQLite store and applies the embedded schema.
package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

// Schema for the submission journal, admin users, token blocklist and
// endpoint checks. Every statement is IF NOT EXISTS, so it is reapplied on
// each start.
//
//go:embed schema.sql
var schemaSQL string

// startupPragmas tune SQLite for one writer process with concurrent admin
// reads: WAL keeps readers from blocking on the writer, busy_timeout rides
// out the endpoint checker and a handler touching the file at once.
var startupPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Open opens the database at path, creating it if needed, and applies the
// schema.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	for _, pragma := range startupPragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return conn, nil
}
