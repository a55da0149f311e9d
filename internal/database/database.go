package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

// startupPragmas configure the connection for concurrent use: WAL journal
// mode, a 5 s busy timeout, and enforced foreign keys.
var startupPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Open opens the SQLite file at path through the libSQL driver and applies
// the startup pragmas. Pass ":memory:" for an ephemeral database in tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	for _, pragma := range startupPragmas {
		if err := runPragma(ctx, db, pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// runPragma issues a pragma through QueryContext. libSQL rejects Exec for
// pragmas that return rows (journal_mode does), so query and drain instead.
func runPragma(ctx context.Context, db *sql.DB, pragma string) error {
	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return fmt.Errorf("applying %q: %w", pragma, err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}
