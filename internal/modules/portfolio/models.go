// Package portfolio derives portfolio state from the trade ledger.
// Positions are not stored; they are replayed from trades using FIFO lot
// accounting every time they are needed.
package portfolio

// Instrument represents a tradable security in the ledger
type Instrument struct {
	ID           string
	Symbol       string
	Name         string
	CurrentPrice float64
	CreatedAt    int64
}

// Trade is a single immutable ledger entry.
// Positive quantity is a buy, negative quantity is a sell.
type Trade struct {
	ID           string
	InstrumentID string
	Quantity     float64
	Price        float64
	Fees         float64
	TradeDate    int64 // Unix timestamp
}

// Lot is an open FIFO lot: shares bought together with their all-in cost
// (price * quantity + fees). Sells consume lots front to back.
type Lot struct {
	Quantity  float64
	TotalCost float64
}

// Position is the replayed state of one instrument
type Position struct {
	Instrument  Instrument
	Quantity    float64 // Remaining shares (sum of open lots)
	CostBasis   float64 // Cost of remaining shares (sum of open lot costs)
	AvgCost     float64 // CostBasis / Quantity, 0 when no shares remain
	Invested    float64 // Total cost of all buys, fees included
	RealizedPnL float64 // Realized profit from matched sells
	Lots        []Lot
}

// MarketValue returns the current market value of the position
func (p Position) MarketValue() float64 {
	return p.Quantity * p.Instrument.CurrentPrice
}

// UnrealizedPnL returns the unrealized gain of the open position
func (p Position) UnrealizedPnL() float64 {
	return p.MarketValue() - p.CostBasis
}

// Totals is the portfolio-level summary
type Totals struct {
	MarketValue    float64
	CostBasis      float64 // Cost of shares still held, fees included
	Invested       float64
	RealizedPnL    float64
	UnrealizedPnL  float64
	TotalReturnPct float64 // (realized + unrealized) / invested * 100, 0 when nothing invested
	Positions      int     // Number of open positions
}

// Holding is one entry of the ranked holdings view
type Holding struct {
	Symbol      string
	Name        string
	Quantity    float64
	Price       float64
	MarketValue float64
	AvgCost     float64
	Weight      float64 // Share of total open market value, 0..1
	GainPct     float64 // (price - avg cost) / avg cost * 100, 0 when avg cost is 0
}
