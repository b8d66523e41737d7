// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// We use modernc.org/sqlite (a pure Go translation of SQLite) so the binary
// builds without CGo. database/sql gives us a bounded connection pool with
// per-operation checkout/checkin: no handler ever owns a connection, and a
// slow query blocks only its own request up to the query deadline.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// maxOpenConns bounds the pool. SQLite serializes writes anyway; a small
// pool gives read parallelism under WAL without piling up file locks.
const maxOpenConns = 8

// queryTimeout caps every single statement. Each repository operation is one
// autocommit statement, so a deadline can never leave a write half-applied.
const queryTimeout = 5 * time.Second

// DB wraps a sql.DB pool. It owns the connection lifecycle and the schema;
// UserStore and PostStore hang off it and implement the repository
// interfaces.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), configures the
// pool, and runs migrations. Callers own the returned DB and must Close it
// on shutdown.
func New(dbPath string) (*DB, error) {
	// The pragmas ride in the DSN so the driver applies them to every
	// pooled connection, not just the one that happens to run an Exec.
	// WAL lets reads proceed while a write is in progress; busy_timeout
	// makes writers queue briefly instead of failing with SQLITE_BUSY.
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must stay
	// at exactly one connection or each checkout would see empty tables.
	open := maxOpenConns
	if dbPath == ":memory:" {
		open = 1
	}
	conn.SetMaxOpenConns(open)
	conn.SetMaxIdleConns(open)

	// sql.Open doesn't touch the file; Ping surfaces a bad path or
	// permissions problem immediately instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Must not be called while requests are
// still in flight; the server closes it only after graceful shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// id is INTEGER PRIMARY KEY (SQLite's rowid alias), so a caller-supplied
// positive id is inserted verbatim and an omitted id is assigned by the
// database. tags holds a JSON array as text; the Company* columns are opaque
// optional text carried for portfolio posts.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id       INTEGER PRIMARY KEY,
			name     TEXT NOT NULL,
			email    TEXT NOT NULL,
			password TEXT
		);

		CREATE TABLE IF NOT EXISTS posts (
			id                  INTEGER PRIMARY KEY,
			title               TEXT NOT NULL,
			body                TEXT NOT NULL,
			image               TEXT,
			tags                TEXT,
			category            TEXT,
			company_name        TEXT,
			company_logo        TEXT,
			company_description TEXT,
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// opCtx derives the per-statement deadline for a repository operation.
// The parent context still applies, so a cancelled request aborts the call.
func opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}
