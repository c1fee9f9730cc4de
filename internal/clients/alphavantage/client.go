// Package alphavantage provides a client for the Alpha Vantage market data
// API. The free tier allows 25 requests per day, so the client keeps a local
// daily budget and a short-lived in-memory response cache in front of every
// call.
package alphavantage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"

	// MaxRequestsPerDay is the free-tier daily request budget
	MaxRequestsPerDay = 25

	// DefaultCacheTTL keeps identical requests from burning budget
	DefaultCacheTTL = 15 * time.Minute

	// compactOutputThreshold is the largest window the compact output size
	// (latest 100 data points) can serve
	compactOutputThreshold = 100
)

// DailyPrice is one day of price history. Close prefers the adjusted close
// when the provider supplies one.
type DailyPrice struct {
	Date   string // YYYY-MM-DD
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// ClientInterface defines the contract for fetching daily price history
type ClientInterface interface {
	GetDailySeries(symbol string, days int) ([]DailyPrice, error)
}

type cacheEntry struct {
	prices    []DailyPrice
	expiresAt time.Time
}

// Client is an Alpha Vantage API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu             sync.Mutex
	requestsToday  int
	maxPerDay      int
	counterResetAt time.Time
	cache          map[string]cacheEntry
	cacheTTL       time.Duration
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:         apiKey,
		baseURL:        defaultBaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		log:            log.With().Str("client", "alphavantage").Logger(),
		maxPerDay:      MaxRequestsPerDay,
		counterResetAt: nextMidnightUTC(time.Now().UTC()),
		cache:          make(map[string]cacheEntry),
		cacheTTL:       DefaultCacheTTL,
	}
}

// SetCacheTTL overrides the in-memory response cache TTL
func (c *Client) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheTTL = ttl
}

// GetRemainingRequests returns how many requests are left in today's budget
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollCounterLocked(time.Now().UTC())
	return c.maxPerDay - c.requestsToday
}

// ResetDailyCounter clears the local request counter. Called by the
// scheduler at midnight UTC and available for manual recovery.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestsToday = 0
	c.counterResetAt = nextMidnightUTC(time.Now().UTC())
	c.log.Info().Msg("Daily request counter reset")
}

// ClearCache drops all in-memory cached responses
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// GetDailySeries fetches up to days of daily price history for symbol,
// oldest first. Results are served from the in-memory cache when fresh.
func (c *Client) GetDailySeries(symbol string, days int) ([]DailyPrice, error) {
	if c.apiKey == "" {
		return nil, ErrInvalidAPIKey{}
	}
	if days < 1 {
		days = 1
	}

	outputSize := "compact"
	if days > compactOutputThreshold {
		outputSize = "full"
	}

	cacheKey := buildCacheKey(symbol, outputSize)
	if prices, ok := c.getFromCache(cacheKey); ok {
		return trimToLastDays(prices, days), nil
	}

	if err := c.consumeBudget(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize)
	params.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("alpha vantage request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUpstream{StatusCode: resp.StatusCode}
	}

	var payload struct {
		Note         string                       `json:"Note"`
		Information  string                       `json:"Information"`
		ErrorMessage string                       `json:"Error Message"`
		TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("alpha vantage response for %s is not valid JSON: %w", symbol, err)
	}

	if err := checkAPIError(payload.Note, payload.Information, payload.ErrorMessage, symbol); err != nil {
		return nil, err
	}
	if len(payload.TimeSeries) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("Response contains no daily time series")
		return nil, ErrSymbolNotFound{Symbol: symbol}
	}

	prices := parseDailyTimeSeries(payload.TimeSeries)
	c.setCache(cacheKey, prices)

	c.log.Debug().
		Str("symbol", symbol).
		Int("points", len(prices)).
		Str("outputsize", outputSize).
		Msg("Fetched daily series")

	return trimToLastDays(prices, days), nil
}

// consumeBudget takes one request from today's budget
func (c *Client) consumeBudget() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollCounterLocked(time.Now().UTC())
	if c.requestsToday >= c.maxPerDay {
		return ErrRateLimitExceeded{}
	}
	c.requestsToday++
	return nil
}

// rollCounterLocked resets the counter once midnight UTC has passed.
// Caller must hold c.mu.
func (c *Client) rollCounterLocked(now time.Time) {
	if now.After(c.counterResetAt) {
		c.requestsToday = 0
		c.counterResetAt = nextMidnightUTC(now)
	}
}

func (c *Client) getFromCache(key string) ([]DailyPrice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.prices, true
}

func (c *Client) setCache(key string, prices []DailyPrice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		prices:    prices,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
}

// buildCacheKey builds the cache key for a request. The API key is
// deliberately excluded so rotating keys does not invalidate the cache.
func buildCacheKey(symbol, outputSize string) string {
	return "daily:" + strings.ToUpper(symbol) + ":" + outputSize
}

// checkAPIError classifies the provider's in-band error payloads.
// Throttled responses come back as HTTP 200 with a "Note" (or an
// "Information" field on newer endpoints); unknown symbols come back as an
// "Error Message".
func checkAPIError(note, information, errorMessage, symbol string) error {
	if note != "" || information != "" {
		return ErrRateLimitExceeded{}
	}
	if errorMessage != "" {
		return ErrSymbolNotFound{Symbol: symbol}
	}
	return nil
}

// parseDailyTimeSeries converts the provider's date-keyed map into a slice
// sorted oldest first. Close prefers "5. adjusted close" over "4. close".
func parseDailyTimeSeries(series map[string]map[string]string) []DailyPrice {
	prices := make([]DailyPrice, 0, len(series))
	for date, fields := range series {
		closePrice := parseFloat64(fields["5. adjusted close"])
		if closePrice == 0 {
			closePrice = parseFloat64(fields["4. close"])
		}

		volume, _ := strconv.ParseInt(strings.TrimSpace(fields["6. volume"]), 10, 64)
		if volume == 0 {
			volume, _ = strconv.ParseInt(strings.TrimSpace(fields["5. volume"]), 10, 64)
		}

		prices = append(prices, DailyPrice{
			Date:   date,
			Open:   parseFloat64(fields["1. open"]),
			High:   parseFloat64(fields["2. high"]),
			Low:    parseFloat64(fields["3. low"]),
			Close:  closePrice,
			Volume: volume,
		})
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date < prices[j].Date
	})

	return prices
}

// trimToLastDays keeps the most recent n entries of an ascending series
func trimToLastDays(prices []DailyPrice, n int) []DailyPrice {
	if len(prices) <= n {
		return prices
	}
	return prices[len(prices)-n:]
}

// parseFloat64 parses Alpha Vantage numeric strings. The API uses "None",
// "-" and empty strings for missing values and appends % to some fields.
func parseFloat64(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "none", "null", "-":
		return 0
	}
	s = strings.TrimSuffix(s, "%")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// nextMidnightUTC returns the first instant of the next UTC day
func nextMidnightUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
