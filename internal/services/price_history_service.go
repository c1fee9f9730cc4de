// Package services provides shared services that sit between external
// clients and the domain modules.
package services

import (
	"time"

	"github.com/aristath/lookout/internal/clientdata"
	"github.com/aristath/lookout/internal/clients/alphavantage"
	"github.com/rs/zerolog"
)

// PricePoint is one daily close
type PricePoint struct {
	Date  string // YYYY-MM-DD
	Close float64
}

// cachedSeries is the structure stored in the price cache. Days records the
// window the series was fetched with, so a cached 30-day series is not
// mistaken for a full year of history.
type cachedSeries struct {
	Days   int
	Points []PricePoint
}

// PriceHistoryService provides daily close series with persistent caching
// and stale fallback:
//  1. Fresh cache entry covering the window - serve from cache
//  2. Fetch from Alpha Vantage, store, serve
//  3. Fetch failed - serve a stale cache entry if one exists (stale data
//     beats no data when the provider is throttling)
type PriceHistoryService struct {
	client    alphavantage.ClientInterface
	cacheRepo *clientdata.Repository
	cacheTTL  time.Duration
	log       zerolog.Logger
}

// NewPriceHistoryService creates a new price history service.
// cacheRepo is optional - if nil, persistent caching is disabled.
func NewPriceHistoryService(
	client alphavantage.ClientInterface,
	cacheRepo *clientdata.Repository,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *PriceHistoryService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &PriceHistoryService{
		client:    client,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		log:       log.With().Str("service", "price_history").Logger(),
	}
}

// GetDailyCloses returns up to days of daily closes for symbol, oldest
// first.
func (s *PriceHistoryService) GetDailyCloses(symbol string, days int) ([]PricePoint, error) {
	// Fresh cache hit covering the requested window
	if s.cacheRepo != nil {
		var cached cachedSeries
		found, err := s.cacheRepo.GetIfFresh(symbol, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed")
		} else if found && cached.Days >= days {
			s.log.Debug().Str("symbol", symbol).Int("points", len(cached.Points)).Msg("Cache hit")
			return trimPoints(cached.Points, days), nil
		}
	}

	prices, err := s.client.GetDailySeries(symbol, days)
	if err != nil {
		return s.staleFallback(symbol, days, err)
	}

	points := make([]PricePoint, 0, len(prices))
	for _, price := range prices {
		points = append(points, PricePoint{Date: price.Date, Close: price.Close})
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Store(symbol, cachedSeries{Days: days, Points: points}, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache write failed")
		}
	}

	return points, nil
}

// staleFallback serves an expired cache entry when the provider call failed.
// The original error is returned when nothing usable is cached.
func (s *PriceHistoryService) staleFallback(symbol string, days int, fetchErr error) ([]PricePoint, error) {
	if s.cacheRepo == nil {
		return nil, fetchErr
	}

	var cached cachedSeries
	found, err := s.cacheRepo.Get(symbol, &cached)
	if err != nil || !found || len(cached.Points) == 0 {
		return nil, fetchErr
	}

	age := "unknown"
	if updatedAt, err := s.cacheRepo.UpdatedAt(symbol); err == nil && updatedAt != nil {
		age = time.Since(*updatedAt).Round(time.Minute).String()
	}

	s.log.Warn().
		Err(fetchErr).
		Str("symbol", symbol).
		Str("age", age).
		Msg("Provider fetch failed, serving stale cached series")

	return trimPoints(cached.Points, days), nil
}

// trimPoints keeps the most recent n entries of an ascending series
func trimPoints(points []PricePoint, n int) []PricePoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
