package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "portfolio.db"),
		Profile: ProfileLedger,
		Name:    "portfolio",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func TestNewAppliesProfile(t *testing.T) {
	db := newLedgerDB(t)

	assert.Equal(t, ProfileLedger, db.Profile())
	assert.Equal(t, "portfolio", db.Name())
	assert.NotEmpty(t, db.Path())

	// Migrate created the ledger tables
	var tableName string
	err := db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "trades", tableName)
}

func TestWithTransactionCommits(t *testing.T) {
	db := newLedgerDB(t)

	err := db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO instruments (id, symbol, name, current_price) VALUES (?, ?, ?, ?)`,
			"i1", "AAPL", "Apple Inc.", 190.0)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM instruments`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := newLedgerDB(t)

	err := db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO instruments (id, symbol) VALUES (?, ?)`, "i1", "AAPL"); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM instruments`).Scan(&count))
	assert.Zero(t, count)
}

func TestWithTransactionRecoversPanic(t *testing.T) {
	db := newLedgerDB(t)

	err := db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO instruments (id, symbol) VALUES (?, ?)`, "i1", "AAPL"); err != nil {
			return err
		}
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM instruments`).Scan(&count))
	assert.Zero(t, count)
}

func TestHealthCheck(t *testing.T) {
	db := newLedgerDB(t)

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.QuickCheck(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.HealthCheck(context.Background()))
}

func TestWALCheckpointAndStats(t *testing.T) {
	db := newLedgerDB(t)

	_, err := db.Exec(
		`INSERT INTO instruments (id, symbol, name, current_price) VALUES (?, ?, ?, ?)`,
		"i1", "MSFT", "Microsoft", 400.0)
	require.NoError(t, err)

	require.NoError(t, db.WALCheckpoint("TRUNCATE"))
	require.NoError(t, db.WALCheckpoint("")) // defaults to TRUNCATE

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Positive(t, stats.PageCount)
	assert.Positive(t, stats.PageSize)
	assert.Positive(t, stats.SizeBytes)
}
