package risk

import "math"

// deriveScore maps the raw metrics onto a 0..10 risk score.
//
// Each component is normalized against a saturation point (25% annual
// volatility, 40% drawdown, 18% annualized VaR) and blended 60/25/15.
// A negative Sharpe ratio adds up to 0.2; a Sharpe above 1.2 earns back up
// to 0.2.
func deriveScore(annualVolatility, maxDrawdown, valueAtRisk, sharpeRatio float64) float64 {
	normalizedVolatility := clamp(annualVolatility/0.25, 0, 1)
	normalizedDrawdown := clamp(math.Abs(maxDrawdown)/0.40, 0, 1)
	normalizedVaR := clamp(math.Abs(valueAtRisk)*math.Sqrt(252)/0.18, 0, 1)

	score := normalizedVolatility*0.6 + normalizedDrawdown*0.25 + normalizedVaR*0.15

	if sharpeRatio < 0 {
		score += clamp(math.Abs(sharpeRatio)*0.1, 0, 0.2)
	} else if sharpeRatio > 1.2 {
		score -= clamp((sharpeRatio-1.2)*0.1, 0, 0.2)
	}

	return clamp(score, 0, 1) * 10
}

// levelForScore buckets a score into the presentation level
func levelForScore(score float64) Level {
	if score < 3.5 {
		return LevelLow
	}
	if score < 7 {
		return LevelModerate
	}
	return LevelHigh
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
