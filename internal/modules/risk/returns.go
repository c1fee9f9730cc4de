package risk

import "sort"

// DailyReturns converts an ascending close series into daily simple
// returns. A pair is skipped when the previous close is not positive, so
// bad ticks cannot produce infinite returns.
func DailyReturns(points []PricePoint) []ReturnPoint {
	if len(points) < 2 {
		return nil
	}

	returns := make([]ReturnPoint, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, ReturnPoint{
			Date:   points[i].Date,
			Return: points[i].Close/prev - 1,
		})
	}

	return returns
}

// CompositeSeries is the weighted portfolio return series together with the
// compounded index walked alongside it. Index[i] is the portfolio value
// after applying Returns[i].Return, starting from 1.0.
type CompositeSeries struct {
	Returns []ReturnPoint
	Index   []float64
}

// Composite blends per-holding return series into one portfolio series.
//
// For every date any holding has a return, the composite return is the
// weight-averaged return of the holdings covering that date, with weights
// renormalized over the covered holdings. Dates with zero covered weight
// are skipped. weights and series run parallel to each other.
func Composite(weights []float64, series [][]ReturnPoint) CompositeSeries {
	byDate := make([]map[string]float64, len(series))
	dateSet := make(map[string]struct{})
	for i, s := range series {
		byDate[i] = make(map[string]float64, len(s))
		for _, point := range s {
			byDate[i][point.Date] = point.Return
			dateSet[point.Date] = struct{}{}
		}
	}

	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	composite := CompositeSeries{}
	cumulative := 1.0

	for _, date := range dates {
		weightedReturn := 0.0
		coveredWeight := 0.0

		for i := range byDate {
			if r, ok := byDate[i][date]; ok {
				weightedReturn += r * weights[i]
				coveredWeight += weights[i]
			}
		}

		if coveredWeight == 0 {
			continue
		}

		normalized := weightedReturn / coveredWeight
		cumulative *= 1 + normalized
		composite.Returns = append(composite.Returns, ReturnPoint{Date: date, Return: normalized})
		composite.Index = append(composite.Index, cumulative)
	}

	return composite
}

// MonthlyReturns derives month-over-month returns from the compounded
// index: the last index value of each calendar month is kept and
// consecutive month-end values are turned into simple returns. Pairs with
// a non-positive side are skipped.
func MonthlyReturns(composite CompositeSeries) []float64 {
	if len(composite.Returns) == 0 {
		return nil
	}

	monthEnd := make(map[string]float64)
	for i, point := range composite.Returns {
		monthEnd[monthKey(point.Date)] = composite.Index[i]
	}

	months := make([]string, 0, len(monthEnd))
	for month := range monthEnd {
		months = append(months, month)
	}
	sort.Strings(months)

	var returns []float64
	for i := 1; i < len(months); i++ {
		prev := monthEnd[months[i-1]]
		current := monthEnd[months[i]]
		if prev > 0 && current > 0 {
			returns = append(returns, current/prev-1)
		}
	}

	return returns
}

// monthKey truncates a YYYY-MM-DD date to its YYYY-MM month bucket
func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
