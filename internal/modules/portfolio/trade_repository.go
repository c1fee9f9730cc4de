package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/aristath/lookout/internal/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tradeColumns is the standard column list for trade queries
const tradeColumns = `id, instrument_id, quantity, price, fees, trade_date`

// TradeRepository handles trade ledger database operations
type TradeRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *database.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// Create inserts a new trade. A missing ID is generated.
func (r *TradeRepository) Create(trade *Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}

	query := `INSERT INTO trades (id, instrument_id, quantity, price, fees, trade_date)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		trade.ID, trade.InstrumentID, trade.Quantity, trade.Price, trade.Fees, trade.TradeDate)
	if err != nil {
		return fmt.Errorf("failed to create trade for instrument %s: %w", trade.InstrumentID, err)
	}

	return nil
}

// CreateBatch inserts a set of trades in one transaction. Either every
// trade lands in the ledger or none do.
func (r *TradeRepository) CreateBatch(trades []Trade) error {
	if len(trades) == 0 {
		return nil
	}

	query := `INSERT INTO trades (id, instrument_id, quantity, price, fees, trade_date)
		VALUES (?, ?, ?, ?, ?, ?)`

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		for i := range trades {
			if trades[i].ID == "" {
				trades[i].ID = uuid.NewString()
			}
			if _, err := tx.Exec(query,
				trades[i].ID, trades[i].InstrumentID, trades[i].Quantity,
				trades[i].Price, trades[i].Fees, trades[i].TradeDate); err != nil {
				return fmt.Errorf("failed to create trade for instrument %s: %w", trades[i].InstrumentID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().Int("count", len(trades)).Msg("Trade batch recorded")
	return nil
}

// GetByInstrument returns all trades for one instrument in chronological order
func (r *TradeRepository) GetByInstrument(instrumentID string) ([]Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades
		WHERE instrument_id = ? ORDER BY trade_date, created_at`

	rows, err := r.db.Query(query, instrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for %s: %w", instrumentID, err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

// GetAll returns the whole ledger in chronological order
func (r *TradeRepository) GetAll() ([]Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades ORDER BY trade_date, created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

func (r *TradeRepository) scanTrades(rows *sql.Rows) ([]Trade, error) {
	var trades []Trade
	for rows.Next() {
		var trade Trade
		if err := rows.Scan(
			&trade.ID,
			&trade.InstrumentID,
			&trade.Quantity,
			&trade.Price,
			&trade.Fees,
			&trade.TradeDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}
