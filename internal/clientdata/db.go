package clientdata

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver for the cache database
)

// OpenCacheDB opens the price cache database with cache-appropriate
// settings: WAL journaling, no fsync (it is a cache) and a busy timeout so
// the cleanup job and request handlers do not trip over each other.
func OpenCacheDB(path string) (*sql.DB, error) {
	dsn := path + "?_journal_mode=WAL&_synchronous=OFF&_busy_timeout=5000"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return db, nil
}

// MigrateCacheDB applies the cache schema directly. Used when the cache
// database is opened outside the database package wrapper.
func MigrateCacheDB(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS price_series (
    symbol     TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    updated_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_series_expires ON price_series(expires_at);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply cache schema: %w", err)
	}
	return nil
}
