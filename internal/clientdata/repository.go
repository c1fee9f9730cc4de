// Package clientdata provides persistent caching for external API client
// responses. Payloads are stored as msgpack blobs with expiration timestamps
// for cache-first behavior; stale rows are kept until cleanup so failed API
// calls can fall back to them.
package clientdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Repository provides cache operations for fetched price series.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Store saves a value under key with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert.
func (r *Repository) Store(key string, value interface{}, ttl time.Duration) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", key, err)
	}

	now := time.Now().Unix()
	expiresAt := time.Now().Add(ttl).Unix()

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO price_series (symbol, payload, updated_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		key, payload, now, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}

	return nil
}

// GetIfFresh unmarshals the entry for key into out only if expires_at > now.
// Returns false if the key doesn't exist or the entry is expired. Use Get
// to retrieve stale data as a fallback when API calls fail.
func (r *Repository) GetIfFresh(key string, out interface{}) (bool, error) {
	return r.get(key, out, true)
}

// Get unmarshals the entry for key into out regardless of expiration.
// Stale data beats no data when the provider is unavailable.
func (r *Repository) Get(key string, out interface{}) (bool, error) {
	return r.get(key, out, false)
}

func (r *Repository) get(key string, out interface{}, freshOnly bool) (bool, error) {
	query := `SELECT payload FROM price_series WHERE symbol = ?`
	args := []interface{}{key}
	if freshOnly {
		query += ` AND expires_at > ?`
		args = append(args, time.Now().Unix())
	}

	var payload []byte
	err := r.db.QueryRow(query, args...).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}

	if err := msgpack.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry %s: %w", key, err)
	}

	return true, nil
}

// UpdatedAt returns the storage time of the entry for key, or nil if the key
// is absent. Used for logging the age of stale fallbacks.
func (r *Repository) UpdatedAt(key string) (*time.Time, error) {
	var unix int64
	err := r.db.QueryRow(`SELECT updated_at FROM price_series WHERE symbol = ?`, key).Scan(&unix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry age for %s: %w", key, err)
	}

	t := time.Unix(unix, 0).UTC()
	return &t, nil
}

// DeleteExpired removes entries whose grace period has passed. Entries are
// kept for graceDays past expiration so stale fallbacks survive provider
// outages, then purged.
func (r *Repository) DeleteExpired(graceDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -graceDays).Unix()

	result, err := r.db.Exec(`DELETE FROM price_series WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted cache entries: %w", err)
	}

	return deleted, nil
}

// Count returns the number of cached entries
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM price_series`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}
