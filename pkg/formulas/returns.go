package formulas

import "math"

// AnnualizedReturn calculates the geometric annualized return from a series
// of periodic simple returns. It averages log growth factors and compounds
// back up, which keeps long series numerically stable.
//
// Returns 0 when any growth factor is non-positive (a -100% or worse period
// makes the geometric mean undefined) or when the series is empty.
func AnnualizedReturn(returns []float64, periodsPerYear float64) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}

	sumLog := 0.0
	for _, r := range returns {
		growth := 1 + r
		if growth <= 0 {
			return 0
		}
		sumLog += math.Log(growth)
	}

	meanLog := sumLog / float64(len(returns))
	return math.Expm1(meanLog * periodsPerYear)
}

// SharpeRatio calculates the ratio of annualized return to annualized
// volatility (risk-free rate assumed zero). Returns 0 when volatility is 0
// so flat series do not produce infinities.
func SharpeRatio(annualizedReturn, annualizedVolatility float64) float64 {
	if annualizedVolatility == 0 {
		return 0
	}
	return annualizedReturn / annualizedVolatility
}
