package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	points := []PricePoint{
		{Date: "2024-01-02", Close: 100},
		{Date: "2024-01-03", Close: 102},
		{Date: "2024-01-04", Close: 96.9},
	}

	returns := DailyReturns(points)
	require.Len(t, returns, 2)

	assert.Equal(t, "2024-01-03", returns[0].Date)
	assert.InDelta(t, 0.02, returns[0].Return, 1e-9)
	assert.Equal(t, "2024-01-04", returns[1].Date)
	assert.InDelta(t, -0.05, returns[1].Return, 1e-9)
}

func TestDailyReturnsSkipsNonPositivePrev(t *testing.T) {
	points := []PricePoint{
		{Date: "2024-01-02", Close: 100},
		{Date: "2024-01-03", Close: 0}, // bad tick
		{Date: "2024-01-04", Close: 105},
		{Date: "2024-01-05", Close: 110.25},
	}

	returns := DailyReturns(points)
	require.Len(t, returns, 2)

	// 0 -> 105 is skipped because the previous close is not positive.
	assert.Equal(t, "2024-01-03", returns[0].Date)
	assert.Equal(t, "2024-01-05", returns[1].Date)
	assert.InDelta(t, 0.05, returns[1].Return, 1e-9)
}

func TestDailyReturnsTooShort(t *testing.T) {
	assert.Nil(t, DailyReturns(nil))
	assert.Nil(t, DailyReturns([]PricePoint{{Date: "2024-01-02", Close: 100}}))
}

func TestCompositeFullCoverage(t *testing.T) {
	series := [][]ReturnPoint{
		{{Date: "2024-01-03", Return: 0.02}, {Date: "2024-01-04", Return: 0.01}},
		{{Date: "2024-01-03", Return: -0.01}, {Date: "2024-01-04", Return: 0.03}},
	}

	composite := Composite([]float64{0.75, 0.25}, series)
	require.Len(t, composite.Returns, 2)

	// 0.75*0.02 + 0.25*-0.01 = 0.0125
	assert.InDelta(t, 0.0125, composite.Returns[0].Return, 1e-9)
	// 0.75*0.01 + 0.25*0.03 = 0.015
	assert.InDelta(t, 0.015, composite.Returns[1].Return, 1e-9)

	// Compounded index walks alongside
	assert.InDelta(t, 1.0125, composite.Index[0], 1e-9)
	assert.InDelta(t, 1.0125*1.015, composite.Index[1], 1e-9)
}

func TestCompositeRenormalizesOverCoveredHoldings(t *testing.T) {
	// Holding A (weight 0.6) returned 2% on a date holding B has no data
	// for: the composite return for that date is A's 2%, not 1.2%.
	series := [][]ReturnPoint{
		{{Date: "2024-01-03", Return: 0.02}},
		{}, // B has no data at all
	}

	composite := Composite([]float64{0.6, 0.4}, series)
	require.Len(t, composite.Returns, 1)
	assert.Equal(t, "2024-01-03", composite.Returns[0].Date)
	assert.InDelta(t, 0.02, composite.Returns[0].Return, 1e-9)
}

func TestCompositeSkipsZeroCoveredWeight(t *testing.T) {
	series := [][]ReturnPoint{
		{{Date: "2024-01-03", Return: 0.02}},
		{{Date: "2024-01-04", Return: 0.01}},
	}

	// The only holding covering 2024-01-03 has zero weight.
	composite := Composite([]float64{0, 1}, series)
	require.Len(t, composite.Returns, 1)
	assert.Equal(t, "2024-01-04", composite.Returns[0].Date)
}

func TestCompositeSortsDates(t *testing.T) {
	series := [][]ReturnPoint{
		{{Date: "2024-01-05", Return: 0.01}, {Date: "2024-01-03", Return: 0.02}},
	}

	composite := Composite([]float64{1}, series)
	require.Len(t, composite.Returns, 2)
	assert.Equal(t, "2024-01-03", composite.Returns[0].Date)
	assert.Equal(t, "2024-01-05", composite.Returns[1].Date)
}

func TestMonthlyReturns(t *testing.T) {
	composite := Composite([]float64{1}, [][]ReturnPoint{{
		{Date: "2024-01-10", Return: 0.10},
		{Date: "2024-01-31", Return: 0.00}, // January ends at index 1.10
		{Date: "2024-02-15", Return: 0.10}, // February ends at 1.21
		{Date: "2024-03-01", Return: -0.50},
		{Date: "2024-03-20", Return: 1.00}, // March ends at 1.21
	}})

	monthly := MonthlyReturns(composite)
	require.Len(t, monthly, 2)
	assert.InDelta(t, 0.10, monthly[0], 1e-9) // Jan -> Feb
	assert.InDelta(t, 0.00, monthly[1], 1e-9) // Feb -> Mar
}

func TestMonthlyReturnsEmpty(t *testing.T) {
	assert.Nil(t, MonthlyReturns(CompositeSeries{}))
}
