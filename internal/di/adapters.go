package di

import (
	"github.com/aristath/lookout/internal/modules/portfolio"
	"github.com/aristath/lookout/internal/modules/risk"
	"github.com/aristath/lookout/internal/services"
)

// holdingsAdapter exposes open portfolio positions as risk holdings
type holdingsAdapter struct {
	service *portfolio.Service
}

func (a *holdingsAdapter) GetRiskHoldings() ([]risk.Holding, error) {
	positions, err := a.service.GetOpenPositions()
	if err != nil {
		return nil, err
	}

	holdings := make([]risk.Holding, 0, len(positions))
	for _, pos := range positions {
		holdings = append(holdings, risk.Holding{
			Symbol:      pos.Instrument.Symbol,
			MarketValue: pos.MarketValue(),
		})
	}
	return holdings, nil
}

// priceHistoryAdapter bridges the cached price history service to the risk
// engine's provider contract
type priceHistoryAdapter struct {
	service *services.PriceHistoryService
}

func (a *priceHistoryAdapter) GetDailyCloses(symbol string, days int) ([]risk.PricePoint, error) {
	points, err := a.service.GetDailyCloses(symbol, days)
	if err != nil {
		return nil, err
	}

	converted := make([]risk.PricePoint, len(points))
	for i, point := range points {
		converted[i] = risk.PricePoint{Date: point.Date, Close: point.Close}
	}
	return converted, nil
}
