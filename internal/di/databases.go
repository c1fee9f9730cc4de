package di

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/aristath/lookout/internal/clientdata"
	"github.com/aristath/lookout/internal/database"
	"github.com/rs/zerolog"
)

// Databases holds the open database handles. The trade ledger uses the
// managed wrapper with its durability profile; the price cache is a plain
// connection tuned for throwaway data.
type Databases struct {
	Portfolio *database.DB
	Cache     *sql.DB
}

// InitializeDatabases opens and migrates both databases under dataDir
func InitializeDatabases(dataDir string, log zerolog.Logger) (*Databases, error) {
	portfolioDB, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "portfolio.db"),
		Profile: database.ProfileLedger,
		Name:    "portfolio",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio database: %w", err)
	}
	if err := portfolioDB.Migrate(); err != nil {
		_ = portfolioDB.Close()
		return nil, fmt.Errorf("failed to migrate portfolio database: %w", err)
	}

	cacheDB, err := clientdata.OpenCacheDB(filepath.Join(dataDir, "cache.db"))
	if err != nil {
		_ = portfolioDB.Close()
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := clientdata.MigrateCacheDB(cacheDB); err != nil {
		_ = cacheDB.Close()
		_ = portfolioDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	log.Info().
		Str("ledger", portfolioDB.Path()).
		Str("profile", string(portfolioDB.Profile())).
		Msg("Databases initialized")

	return &Databases{
		Portfolio: portfolioDB,
		Cache:     cacheDB,
	}, nil
}

// Close closes all database handles, returning the first error
func (d *Databases) Close() error {
	var firstErr error
	if err := d.Cache.Close(); err != nil {
		firstErr = err
	}
	if err := d.Portfolio.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
