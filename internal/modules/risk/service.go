package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/lookout/internal/clients/alphavantage"
	"github.com/aristath/lookout/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// fetchBufferDays is added to the lookback window when fetching so the
	// monthly leg of the blended return has full months to work with.
	fetchBufferDays = 35

	// trailingMonths caps the monthly leg of the blended return
	trailingMonths = 12

	// recentReturnDays is the short-term leg window of the blended return
	recentReturnDays = 30

	// minTrailingMonths gates the blended return; fewer monthly
	// observations fall back to the full-series annualized return.
	minTrailingMonths = 3
)

// HoldingsProvider defines the contract for loading the current holdings
type HoldingsProvider interface {
	GetRiskHoldings() ([]Holding, error)
}

// Service computes portfolio risk metrics.
//
// Per computation it loads the holdings, fetches price history for each one
// concurrently, composes a coverage-weighted portfolio return series and
// derives the metrics. Holdings the provider has no data for degrade to a
// warning instead of failing the computation.
type Service struct {
	holdings     HoldingsProvider
	prices       PriceHistoryProvider
	lookbackDays int
	workers      int
	memo         *memoCache
	log          zerolog.Logger
}

// NewService creates a new risk service. lookbackDays is the default price
// history window.
func NewService(
	holdings HoldingsProvider,
	prices PriceHistoryProvider,
	lookbackDays int,
	log zerolog.Logger,
) *Service {
	if lookbackDays < 2 {
		lookbackDays = 365
	}
	return &Service{
		holdings:     holdings,
		prices:       prices,
		lookbackDays: lookbackDays,
		workers:      defaultFetchWorkers,
		memo:         newMemoCache(defaultMemoTTL),
		log:          log.With().Str("service", "risk").Logger(),
	}
}

// GetMetrics computes the portfolio risk profile over lookbackDays of
// history (the configured default when lookbackDays <= 0). Back-to-back
// calls with an unchanged portfolio are served from a short-lived memo.
func (s *Service) GetMetrics(lookbackDays int) (*Metrics, error) {
	if lookbackDays <= 0 {
		lookbackDays = s.lookbackDays
	}

	holdings, err := s.holdings.GetRiskHoldings()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	key := snapshotKey(holdings, lookbackDays)
	if metrics, ok := s.memo.get(key); ok {
		s.log.Debug().Str("computation_id", metrics.ComputationID).Msg("Serving memoized metrics")
		return metrics, nil
	}

	metrics := s.compute(holdings, lookbackDays)
	s.memo.set(key, metrics)
	return metrics, nil
}

func (s *Service) compute(holdings []Holding, lookbackDays int) *Metrics {
	computationID := uuid.NewString()
	log := s.log.With().Str("computation_id", computationID).Logger()
	started := time.Now()

	totalValue := 0.0
	for _, holding := range holdings {
		totalValue += holding.MarketValue
	}
	if len(holdings) == 0 || totalValue <= 0 {
		return zeroMetrics(computationID, 0, "", warnNoHoldings)
	}

	results := fetchAll(s.prices, holdings, lookbackDays+fetchBufferDays, s.workers)

	var usable []fetchResult
	var missing []string
	for _, result := range results {
		switch {
		case result.err != nil:
			log.Warn().
				Err(result.err).
				Str("symbol", result.holding.Symbol).
				Str("cause", classifyFetchError(result.err)).
				Msg("Price history unavailable")
			missing = append(missing, result.holding.Symbol)
		case len(result.points) < minHoldingPricePoints:
			log.Warn().
				Str("symbol", result.holding.Symbol).
				Int("points", len(result.points)).
				Msg("Price history too thin")
			missing = append(missing, result.holding.Symbol)
		default:
			usable = append(usable, result)
		}
	}

	if len(usable) == 0 {
		return zeroMetrics(computationID, 0, "", warnNoMarketData)
	}

	usedValue := 0.0
	for _, result := range usable {
		usedValue += result.holding.MarketValue
	}
	if usedValue <= 0 {
		return zeroMetrics(computationID, 0, "", warnNoMarketValue)
	}

	weights := make([]float64, len(usable))
	series := make([][]ReturnPoint, len(usable))
	for i, result := range usable {
		weights[i] = result.holding.MarketValue / usedValue
		series[i] = DailyReturns(result.points)
	}

	composite := Composite(weights, series)
	observations := len(composite.Returns)

	latestDate := ""
	if observations > 0 {
		latestDate = composite.Returns[observations-1].Date
	}

	if observations < minCompositeReturns {
		return zeroMetrics(computationID, observations, latestDate, warnShortHistory)
	}

	returns := make([]float64, observations)
	for i, point := range composite.Returns {
		returns[i] = point.Return
	}

	annualVolatility := formulas.AnnualizedVolatility(returns)
	annualReturn := s.blendedAnnualReturn(returns, composite)
	sharpe := formulas.SharpeRatio(annualReturn, annualVolatility)
	maxDrawdown := formulas.MaxDrawdown(returns)
	valueAtRisk := formulas.HistoricalVaR(returns, 0.95)

	score := round1(deriveScore(annualVolatility, maxDrawdown, valueAtRisk, sharpe))

	metrics := &Metrics{
		Score:            score,
		Level:            levelForScore(score),
		VolatilityPct:    round2(annualVolatility * 100),
		SharpeRatio:      round2(sharpe),
		MaxDrawdownPct:   round2(maxDrawdown * 100),
		ValueAtRisk95Pct: round2(valueAtRisk * 100),
		AnnualReturnPct:  round2(annualReturn * 100),
		Observations:     observations,
		LatestDate:       latestDate,
		Warnings:         missingDataWarnings(missing),
		ComputationID:    computationID,
	}

	log.Info().
		Float64("score", metrics.Score).
		Str("level", string(metrics.Level)).
		Int("observations", observations).
		Int("holdings_used", len(usable)).
		Int("holdings_missing", len(missing)).
		Dur("elapsed", time.Since(started)).
		Msg("Computed risk metrics")

	return metrics
}

// blendedAnnualReturn blends a long-horizon leg (up to 12 trailing monthly
// returns, 60%) with a short-horizon leg (last 30 daily returns, 40%).
// With fewer than 3 monthly observations the full daily series is
// annualized instead.
func (s *Service) blendedAnnualReturn(returns []float64, composite CompositeSeries) float64 {
	monthly := MonthlyReturns(composite)
	if len(monthly) > trailingMonths {
		monthly = monthly[len(monthly)-trailingMonths:]
	}

	if len(monthly) < minTrailingMonths {
		return formulas.AnnualizedReturn(returns, formulas.TradingDaysPerYear)
	}

	recent := returns
	if len(recent) > recentReturnDays {
		recent = recent[len(recent)-recentReturnDays:]
	}

	longTerm := formulas.AnnualizedReturn(monthly, 12)
	shortTerm := formulas.AnnualizedReturn(recent, formulas.TradingDaysPerYear)
	return longTerm*0.6 + shortTerm*0.4
}

// classifyFetchError names the provider failure mode for logs
func classifyFetchError(err error) string {
	var rateLimited alphavantage.ErrRateLimitExceeded
	var notFound alphavantage.ErrSymbolNotFound
	var upstream alphavantage.ErrUpstream

	switch {
	case errors.As(err, &rateLimited):
		return "rate_limited"
	case errors.As(err, &notFound):
		return "no_data"
	case errors.As(err, &upstream):
		return "upstream_error"
	default:
		return "unknown"
	}
}

// missingDataWarnings builds the partial-coverage warning, empty when all
// holdings had data
func missingDataWarnings(missing []string) []string {
	if len(missing) == 0 {
		return []string{}
	}
	return []string{"Missing market data for: " + strings.Join(missing, ", ")}
}

// zeroMetrics is the degenerate result for portfolios that cannot be
// analyzed. All metrics are zero and the score bucket is Low.
func zeroMetrics(computationID string, observations int, latestDate string, warning string) *Metrics {
	return &Metrics{
		Level:         LevelLow,
		Observations:  observations,
		LatestDate:    latestDate,
		Warnings:      []string{warning},
		ComputationID: computationID,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
