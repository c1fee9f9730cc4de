package risk

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// defaultMemoTTL keeps dashboard bursts from recomputing (and refetching)
// the same metrics several times in a row.
const defaultMemoTTL = 30 * time.Second

// memoCache is a single-entry cache keyed by a snapshot of the inputs.
// A new holdings snapshot or lookback invalidates it immediately; time
// invalidates it shortly after.
type memoCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	key       string
	metrics   *Metrics
	expiresAt time.Time
}

func newMemoCache(ttl time.Duration) *memoCache {
	if ttl <= 0 {
		ttl = defaultMemoTTL
	}
	return &memoCache{ttl: ttl}
}

func (m *memoCache) get(key string) (*Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.metrics == nil || m.key != key || time.Now().After(m.expiresAt) {
		return nil, false
	}
	return m.metrics, true
}

func (m *memoCache) set(key string, metrics *Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.key = key
	m.metrics = metrics
	m.expiresAt = time.Now().Add(m.ttl)
}

// snapshotKey fingerprints the computation inputs. Holdings are sorted so
// ordering differences upstream do not defeat the cache.
func snapshotKey(holdings []Holding, lookbackDays int) string {
	parts := make([]string, 0, len(holdings)+1)
	for _, holding := range holdings {
		parts = append(parts, fmt.Sprintf("%s:%.4f", holding.Symbol, holding.MarketValue))
	}
	sort.Strings(parts)
	parts = append(parts, fmt.Sprintf("lookback:%d", lookbackDays))
	return strings.Join(parts, "|")
}
