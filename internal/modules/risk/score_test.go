package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveScore(t *testing.T) {
	tests := []struct {
		name        string
		volatility  float64
		maxDrawdown float64
		valueAtRisk float64
		sharpe      float64
		expected    float64
	}{
		{
			name:     "flat portfolio scores zero",
			expected: 0,
		},
		{
			name:        "all components saturated",
			volatility:  0.50,
			maxDrawdown: -0.80,
			valueAtRisk: -0.10,
			sharpe:      0.5,
			expected:    10,
		},
		{
			name:       "volatility only",
			volatility: 0.125, // half of the 25% saturation point
			expected:   0.5 * 0.6 * 10,
		},
		{
			name:        "drawdown only",
			maxDrawdown: -0.20, // half of the 40% saturation point
			expected:    0.5 * 0.25 * 10,
		},
		{
			name:       "negative sharpe penalty is capped",
			volatility: 0.125,
			sharpe:     -5,
			expected:   (0.5*0.6 + 0.2) * 10,
		},
		{
			name:       "excellent sharpe earns credit",
			volatility: 0.25,
			sharpe:     2.2, // (2.2-1.2)*0.1 = 0.1 subtracted
			expected:   (0.6 - 0.1) * 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveScore(tt.volatility, tt.maxDrawdown, tt.valueAtRisk, tt.sharpe)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestDeriveScoreVaRAnnualization(t *testing.T) {
	// A 1% daily VaR annualizes to ~15.87%, just under the 18% saturation.
	expected := math.Abs(-0.01) * math.Sqrt(252) / 0.18 * 0.15 * 10
	got := deriveScore(0, 0, -0.01, 0)
	assert.InDelta(t, expected, got, 1e-9)
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, LevelLow, levelForScore(0))
	assert.Equal(t, LevelLow, levelForScore(3.4))
	assert.Equal(t, LevelModerate, levelForScore(3.5))
	assert.Equal(t, LevelModerate, levelForScore(6.9))
	assert.Equal(t, LevelHigh, levelForScore(7))
	assert.Equal(t, LevelHigh, levelForScore(10))
}
