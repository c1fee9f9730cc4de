package alphavantage

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time check that Client satisfies ClientInterface
var _ ClientInterface = (*Client)(nil)

const dailySeriesFixture = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2024-01-03": {"1. open": "184.22", "2. high": "185.88", "3. low": "183.43", "4. close": "184.25", "5. adjusted close": "183.90", "6. volume": "58414460"},
		"2024-01-02": {"1. open": "187.15", "2. high": "188.44", "3. low": "183.89", "4. close": "185.64", "5. adjusted close": "185.30", "6. volume": "82488700"},
		"2024-01-04": {"1. open": "182.15", "2. high": "183.09", "3. low": "180.88", "4. close": "181.91", "6. volume": "71983600"}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL
	return client
}

func TestGetDailySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "compact", r.URL.Query().Get("outputsize"))
		fmt.Fprint(w, dailySeriesFixture)
	})

	prices, err := client.GetDailySeries("AAPL", 30)
	require.NoError(t, err)
	require.Len(t, prices, 3)

	// Ascending by date
	assert.Equal(t, "2024-01-02", prices[0].Date)
	assert.Equal(t, "2024-01-03", prices[1].Date)
	assert.Equal(t, "2024-01-04", prices[2].Date)

	// Adjusted close preferred, raw close as fallback
	assert.InDelta(t, 185.30, prices[0].Close, 1e-9)
	assert.InDelta(t, 181.91, prices[2].Close, 1e-9)
	assert.Equal(t, int64(82488700), prices[0].Volume)
}

func TestGetDailySeriesTrimsWindow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dailySeriesFixture)
	})

	prices, err := client.GetDailySeries("AAPL", 2)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "2024-01-03", prices[0].Date)
	assert.Equal(t, "2024-01-04", prices[1].Date)
}

func TestGetDailySeriesFullOutputSize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		fmt.Fprint(w, dailySeriesFixture)
	})

	_, err := client.GetDailySeries("AAPL", 365)
	require.NoError(t, err)
}

func TestGetDailySeriesRateLimitNote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	})

	_, err := client.GetDailySeries("AAPL", 30)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrRateLimitExceeded{})
}

func TestGetDailySeriesInformationPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Information": "API rate limit reached."}`)
	})

	_, err := client.GetDailySeries("AAPL", 30)
	assert.ErrorAs(t, err, &ErrRateLimitExceeded{})
}

func TestGetDailySeriesUnknownSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call."}`)
	})

	_, err := client.GetDailySeries("NOPE", 30)
	require.Error(t, err)

	var notFound ErrSymbolNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "NOPE", notFound.Symbol)
}

func TestGetDailySeriesEmptySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Meta Data": {}}`)
	})

	_, err := client.GetDailySeries("AAPL", 30)

	var notFound ErrSymbolNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "AAPL", notFound.Symbol)
}

func TestGetDailySeriesUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetDailySeries("AAPL", 30)
	require.Error(t, err)

	var upstream ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestGetDailySeriesMissingAPIKey(t *testing.T) {
	client := NewClient("", zerolog.Nop())

	_, err := client.GetDailySeries("AAPL", 30)
	assert.ErrorAs(t, err, &ErrInvalidAPIKey{})
}

func TestDailyBudget(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, dailySeriesFixture)
	})
	client.SetCacheTTL(0) // disable response cache so every call hits the server

	client.maxPerDay = 2
	assert.Equal(t, 2, client.GetRemainingRequests())

	_, err := client.GetDailySeries("AAPL", 30)
	require.NoError(t, err)
	_, err = client.GetDailySeries("AAPL", 30)
	require.NoError(t, err)
	assert.Equal(t, 0, client.GetRemainingRequests())

	_, err = client.GetDailySeries("AAPL", 30)
	assert.ErrorAs(t, err, &ErrRateLimitExceeded{})
	assert.Equal(t, 2, requests)

	client.ResetDailyCounter()
	assert.Equal(t, 2, client.GetRemainingRequests())
}

func TestResponseCache(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, dailySeriesFixture)
	})

	_, err := client.GetDailySeries("AAPL", 30)
	require.NoError(t, err)
	_, err = client.GetDailySeries("AAPL", 10) // same outputsize, served from cache
	require.NoError(t, err)

	assert.Equal(t, 1, requests)

	client.ClearCache()
	_, err = client.GetDailySeries("AAPL", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestBuildCacheKeyExcludesAPIKey(t *testing.T) {
	key := buildCacheKey("aapl", "compact")
	assert.Equal(t, "daily:AAPL:compact", key)
	assert.NotContains(t, key, "test-key")
}

func TestParseFloat64(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"123.45", 123.45},
		{"", 0},
		{"None", 0},
		{"null", 0},
		{"-", 0},
		{"50.5%", 50.5},
		{" 7.5 ", 7.5},
		{"garbage", 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, parseFloat64(tt.input), 1e-9, "input %q", tt.input)
	}
}

func TestNextMidnightUTC(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	next := nextMidnightUTC(now)

	assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), next)
}
