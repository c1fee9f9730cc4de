package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/aristath/lookout/internal/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// instrumentColumns is the standard column list for instrument queries
const instrumentColumns = `id, symbol, name, current_price, created_at`

// InstrumentRepository handles instrument database operations
type InstrumentRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *database.DB, log zerolog.Logger) *InstrumentRepository {
	return &InstrumentRepository{
		db:  db,
		log: log.With().Str("repo", "instrument").Logger(),
	}
}

// Create inserts a new instrument. A missing ID is generated.
func (r *InstrumentRepository) Create(instrument *Instrument) error {
	if instrument.ID == "" {
		instrument.ID = uuid.NewString()
	}

	query := `INSERT INTO instruments (id, symbol, name, current_price)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.Exec(query, instrument.ID, instrument.Symbol, instrument.Name, instrument.CurrentPrice)
	if err != nil {
		return fmt.Errorf("failed to create instrument %s: %w", instrument.Symbol, err)
	}

	return nil
}

// UpdatePrice sets the current price of an instrument by symbol
func (r *InstrumentRepository) UpdatePrice(symbol string, price float64) error {
	result, err := r.db.Exec(`UPDATE instruments SET current_price = ? WHERE symbol = ?`, price, symbol)
	if err != nil {
		return fmt.Errorf("failed to update price for %s: %w", symbol, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result for %s: %w", symbol, err)
	}
	if rows == 0 {
		return fmt.Errorf("instrument not found: %s", symbol)
	}

	return nil
}

// GetBySymbol returns one instrument by symbol
func (r *InstrumentRepository) GetBySymbol(symbol string) (*Instrument, error) {
	query := `SELECT ` + instrumentColumns + ` FROM instruments WHERE symbol = ?`

	instrument, err := r.scanInstrument(r.db.QueryRow(query, symbol))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument %s: %w", symbol, err)
	}

	return instrument, nil
}

// GetAll returns all instruments ordered by symbol
func (r *InstrumentRepository) GetAll() ([]Instrument, error) {
	query := `SELECT ` + instrumentColumns + ` FROM instruments ORDER BY symbol`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	var instruments []Instrument
	for rows.Next() {
		var instrument Instrument
		if err := rows.Scan(
			&instrument.ID,
			&instrument.Symbol,
			&instrument.Name,
			&instrument.CurrentPrice,
			&instrument.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, instrument)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instruments: %w", err)
	}

	return instruments, nil
}

func (r *InstrumentRepository) scanInstrument(row *sql.Row) (*Instrument, error) {
	var instrument Instrument
	err := row.Scan(
		&instrument.ID,
		&instrument.Symbol,
		&instrument.Name,
		&instrument.CurrentPrice,
		&instrument.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &instrument, nil
}
