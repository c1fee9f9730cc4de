package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/lookout/internal/config"
	"github.com/aristath/lookout/internal/di"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DataDir:          t.TempDir(),
		Port:             0,
		DevMode:          true,
		RiskLookbackDays: 365,
		TopHoldings:      5,
		PriceCacheTTL:    time.Hour,
	}

	container, err := di.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	return New(Config{
		Log:       zerolog.Nop(),
		Config:    cfg,
		Container: container,
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthEndpointUnavailableWhenLedgerDown(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.container.Databases.Portfolio.Close())

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["status"])
}

func TestPortfolioRoutesMounted(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/portfolio/totals")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.0, data["positions"], 1e-9)
}

func TestRiskRoutesMounted(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/risk/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	// Empty portfolio degrades to zero metrics with a warning
	assert.InDelta(t, 0.0, data["score"], 1e-9)
	warnings, ok := data["warnings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, warnings, 1)
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/system/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Positive(t, status.Goroutines)

	rec = get(t, s, "/api/system/database/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats DatabaseStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Len(t, stats.Databases, 2)
	assert.Equal(t, "ok", stats.LedgerHealth)

	rec = get(t, s, "/api/system/disk")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
