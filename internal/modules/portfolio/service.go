package portfolio

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// InstrumentRepositoryInterface defines the instrument data access contract
type InstrumentRepositoryInterface interface {
	GetAll() ([]Instrument, error)
}

// TradeRepositoryInterface defines the trade data access contract
type TradeRepositoryInterface interface {
	GetByInstrument(instrumentID string) ([]Trade, error)
}

// Service orchestrates portfolio valuation.
//
// All state is derived: the service reads the ledger, replays each
// instrument's trades through the FIFO engine and aggregates the resulting
// positions into totals and ranked holdings.
type Service struct {
	instrumentRepo InstrumentRepositoryInterface
	tradeRepo      TradeRepositoryInterface
	log            zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	instrumentRepo InstrumentRepositoryInterface,
	tradeRepo TradeRepositoryInterface,
	log zerolog.Logger,
) *Service {
	return &Service{
		instrumentRepo: instrumentRepo,
		tradeRepo:      tradeRepo,
		log:            log.With().Str("service", "portfolio").Logger(),
	}
}

// GetPositions replays the ledger and returns one position per instrument,
// including closed ones (zero quantity). Instruments without trades are
// skipped.
func (s *Service) GetPositions() ([]Position, error) {
	instruments, err := s.instrumentRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load instruments: %w", err)
	}

	var positions []Position
	for _, instrument := range instruments {
		trades, err := s.tradeRepo.GetByInstrument(instrument.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load trades for %s: %w", instrument.Symbol, err)
		}
		if len(trades) == 0 {
			continue
		}
		positions = append(positions, ReplayTrades(instrument, trades))
	}

	return positions, nil
}

// GetOpenPositions returns positions with shares remaining and a positive
// market value. Positions priced at zero are excluded so stale instruments
// cannot distort weights.
func (s *Service) GetOpenPositions() ([]Position, error) {
	positions, err := s.GetPositions()
	if err != nil {
		return nil, err
	}

	open := make([]Position, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity > 0 && pos.MarketValue() > 0 {
			open = append(open, pos)
		}
	}

	return open, nil
}

// GetTotals returns the portfolio-level summary across all instruments.
// Realized profit from closed positions is included even though those
// positions no longer appear in the holdings view.
func (s *Service) GetTotals() (*Totals, error) {
	positions, err := s.GetPositions()
	if err != nil {
		return nil, err
	}

	totals := &Totals{}
	for _, pos := range positions {
		totals.Invested += pos.Invested
		totals.RealizedPnL += pos.RealizedPnL

		if pos.Quantity > 0 && pos.MarketValue() > 0 {
			totals.MarketValue += pos.MarketValue()
			totals.CostBasis += pos.CostBasis
			totals.UnrealizedPnL += pos.UnrealizedPnL()
			totals.Positions++
		}
	}

	if totals.Invested > 0 {
		totals.TotalReturnPct = roundPct((totals.RealizedPnL + totals.UnrealizedPnL) / totals.Invested * 100)
	}

	s.log.Debug().
		Float64("market_value", totals.MarketValue).
		Float64("invested", totals.Invested).
		Int("positions", totals.Positions).
		Msg("Calculated portfolio totals")

	return totals, nil
}

// GetHoldings returns the largest open positions by market value, at most
// limit entries, with weights relative to total open market value.
func (s *Service) GetHoldings(limit int) ([]Holding, error) {
	open, err := s.GetOpenPositions()
	if err != nil {
		return nil, err
	}

	totalValue := 0.0
	for _, pos := range open {
		totalValue += pos.MarketValue()
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].MarketValue() > open[j].MarketValue()
	})

	if limit > 0 && len(open) > limit {
		open = open[:limit]
	}

	holdings := make([]Holding, 0, len(open))
	for _, pos := range open {
		holding := Holding{
			Symbol:      pos.Instrument.Symbol,
			Name:        pos.Instrument.Name,
			Quantity:    pos.Quantity,
			Price:       pos.Instrument.CurrentPrice,
			MarketValue: pos.MarketValue(),
			AvgCost:     pos.AvgCost,
		}
		if totalValue > 0 {
			holding.Weight = pos.MarketValue() / totalValue
		}
		if pos.AvgCost > 0 {
			holding.GainPct = roundPct((pos.Instrument.CurrentPrice - pos.AvgCost) / pos.AvgCost * 100)
		}
		holdings = append(holdings, holding)
	}

	return holdings, nil
}

// roundPct rounds percentages to two decimals for presentation
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
