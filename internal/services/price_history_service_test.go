package services

import (
	"testing"
	"time"

	"github.com/aristath/lookout/internal/clientdata"
	"github.com/aristath/lookout/internal/clients/alphavantage"
	testhelpers "github.com/aristath/lookout/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAVClient struct {
	prices []alphavantage.DailyPrice
	err    error
	calls  int
}

func (f *fakeAVClient) GetDailySeries(symbol string, days int) ([]alphavantage.DailyPrice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.prices) > days {
		return f.prices[len(f.prices)-days:], nil
	}
	return f.prices, f.err
}

func newHistoryService(t *testing.T, client *fakeAVClient) (*PriceHistoryService, *clientdata.Repository) {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "cache")
	t.Cleanup(cleanup)

	repo := clientdata.NewRepository(db.Conn())
	return NewPriceHistoryService(client, repo, time.Hour, zerolog.Nop()), repo
}

func somePrices() []alphavantage.DailyPrice {
	return []alphavantage.DailyPrice{
		{Date: "2024-01-02", Close: 185.30},
		{Date: "2024-01-03", Close: 183.90},
		{Date: "2024-01-04", Close: 181.91},
	}
}

func TestGetDailyClosesFetchesAndCaches(t *testing.T) {
	client := &fakeAVClient{prices: somePrices()}
	svc, _ := newHistoryService(t, client)

	points, err := svc.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.InDelta(t, 185.30, points[0].Close, 1e-9)

	// Second call is served from the cache
	points, err = svc.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 1, client.calls)
}

func TestGetDailyClosesRefetchesForWiderWindow(t *testing.T) {
	client := &fakeAVClient{prices: somePrices()}
	svc, _ := newHistoryService(t, client)

	_, err := svc.GetDailyCloses("AAPL", 2)
	require.NoError(t, err)

	// A cached 2-day series cannot serve a 365-day request.
	_, err = svc.GetDailyCloses("AAPL", 365)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestGetDailyClosesTrimsCachedSeries(t *testing.T) {
	client := &fakeAVClient{prices: somePrices()}
	svc, _ := newHistoryService(t, client)

	_, err := svc.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)

	points, err := svc.GetDailyCloses("AAPL", 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-03", points[0].Date)
	assert.Equal(t, 1, client.calls)
}

func TestGetDailyClosesStaleFallback(t *testing.T) {
	client := &fakeAVClient{prices: somePrices()}
	svc, repo := newHistoryService(t, client)

	_, err := svc.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)

	// Expire the cached entry, then make the provider fail.
	var cached struct {
		Days   int
		Points []PricePoint
	}
	found, err := repo.Get("AAPL", &cached)
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, repo.Store("AAPL", cached, -time.Minute))

	client.err = alphavantage.ErrRateLimitExceeded{}

	points, err := svc.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestGetDailyClosesErrorWithoutFallback(t *testing.T) {
	client := &fakeAVClient{err: alphavantage.ErrSymbolNotFound{Symbol: "NOPE"}}
	svc, _ := newHistoryService(t, client)

	_, err := svc.GetDailyCloses("NOPE", 30)
	require.Error(t, err)
	assert.ErrorAs(t, err, &alphavantage.ErrSymbolNotFound{Symbol: "NOPE"})
}

func TestGetDailyClosesWithoutCacheRepo(t *testing.T) {
	client := &fakeAVClient{prices: somePrices()}
	svc := NewPriceHistoryService(client, nil, time.Hour, zerolog.Nop())

	points, err := svc.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)
	assert.Len(t, points, 3)

	client.err = alphavantage.ErrRateLimitExceeded{}
	_, err = svc.GetDailyCloses("AAPL", 30)
	assert.Error(t, err)
}
