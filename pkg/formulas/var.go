package formulas

import (
	"math"
	"sort"
)

// HistoricalVaR calculates historical value-at-risk at the given confidence
// level using the nearest-rank method: returns are sorted ascending and the
// value at index floor((n-1) * (1-confidence)) is taken, clamped to bounds.
//
// For a daily return series at 95% confidence the result is the (negative)
// daily return at the 5th percentile. An empty series returns 0.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)-1) * (1 - confidence)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}
