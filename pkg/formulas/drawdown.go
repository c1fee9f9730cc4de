package formulas

// MaxDrawdown calculates the maximum peak-to-trough decline from a series of
// periodic returns by walking a compounded index starting at 1.0.
//
// The result is <= 0: -0.25 means a 25% drawdown. An empty series returns 0.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	value := 1.0
	peak := 1.0
	maxDrawdown := 0.0

	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		drawdown := (value - peak) / peak
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}
