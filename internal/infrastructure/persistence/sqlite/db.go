package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a sql.DB connection to the message archive database.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens the archive database at path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", archiveDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// All writes arrive serially from the host event loop; one connection
	// is sufficient and sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: db, path: path}, nil
}

// archiveDSN builds the connection string. WAL keeps /health stat reads
// from blocking the event loop's writes; the archive tolerates
// synchronous=NORMAL because a lost tail only re-tombstones on the next
// deletion event.
func archiveDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared&_pragma=foreign_keys(ON)"
	}
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		path,
	)
}

// Migrate brings the archive schema up to the current version.
func (db *DB) Migrate(ctx context.Context) error {
	var currentVersion int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		// Fresh database, no schema_version table yet.
		currentVersion = 0
	}

	if currentVersion >= 1 {
		return nil
	}

	data, err := migrations.ReadFile("migrations/001_initial.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

// Close checkpoints the WAL and closes the connection, so the archive is a
// single file again when the process exits.
func (db *DB) Close() error {
	if db.path != ":memory:" {
		_, _ = db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return db.DB.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
