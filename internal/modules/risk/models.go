// Package risk computes portfolio risk metrics from weighted holdings and
// their daily price history.
package risk

const (
	// minHoldingPricePoints is the minimum number of daily closes a holding
	// needs before it participates in the composite series.
	minHoldingPricePoints = 10

	// minCompositeReturns is the minimum number of composite return
	// observations needed to compute metrics at all.
	minCompositeReturns = 5

	// Warning messages surfaced to API consumers
	warnNoHoldings    = "No portfolio holdings available for risk analysis"
	warnNoMarketData  = "Unable to retrieve market data for holdings; check symbols or API quota"
	warnNoMarketValue = "Portfolio holdings have no market value for risk analysis"
	warnShortHistory  = "Not enough historical data to compute risk metrics"
)

// Level buckets the risk score for presentation
type Level string

const (
	LevelLow      Level = "Low"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
)

// Metrics is the risk profile of the portfolio. Percent fields are rounded
// to two decimals, the score to one.
type Metrics struct {
	Score            float64 // 0..10
	Level            Level
	VolatilityPct    float64 // Annualized volatility
	SharpeRatio      float64
	MaxDrawdownPct   float64 // Most negative peak-to-trough move (<= 0)
	ValueAtRisk95Pct float64 // Daily historical VaR at 95% (<= 0)
	AnnualReturnPct  float64 // Blended annualized return
	Observations     int     // Composite return observations used
	LatestDate       string  // Date of the newest composite observation, "" when none
	Warnings         []string
	ComputationID    string // Correlates API responses with log lines
}

// Holding is one portfolio position as seen by the risk engine
type Holding struct {
	Symbol      string
	MarketValue float64
}

// PricePoint is one daily close of a holding's price history
type PricePoint struct {
	Date  string // YYYY-MM-DD
	Close float64
}

// ReturnPoint is one daily simple return derived from consecutive closes
type ReturnPoint struct {
	Date   string
	Return float64
}
