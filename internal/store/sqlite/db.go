package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/technicalserena/tunegram/internal/store"
)

// OpenDB opens (creating if needed) the SQLite database at path.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The bot writes from several goroutines; a single connection with
	// WAL keeps modernc's driver free of SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ensureSchema creates the tables on first open so the standalone
// deployment works without a separate migrate step. The statements
// mirror migrations/sqlite and are no-ops on an existing database.
func ensureSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id       INTEGER PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    premium_until TIMESTAMP,
    last_sent_at  TIMESTAMP,
    created_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS archive_messages (
    id         TEXT PRIMARY KEY,
    message_id INTEGER NOT NULL UNIQUE,
    kind       TEXT NOT NULL DEFAULT '',
    file_name  TEXT NOT NULL DEFAULT '',
    caption    TEXT NOT NULL DEFAULT '',
    posted_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_archive_messages_posted_at
    ON archive_messages (posted_at DESC);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

// NewStores creates all stores backed by a local SQLite file
// (standalone mode). The returned *sql.DB is owned by the caller.
func NewStores(path string) (*store.Stores, *sql.DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, nil, err
	}
	return &store.Stores{
		Users:   NewUserStore(db),
		Archive: NewArchiveStore(db),
	}, db, nil
}
