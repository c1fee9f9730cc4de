// Package handlers provides HTTP handlers for portfolio valuation.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/lookout/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// PortfolioServiceInterface defines the portfolio operations used by handlers
type PortfolioServiceInterface interface {
	GetTotals() (*portfolio.Totals, error)
	GetHoldings(limit int) ([]portfolio.Holding, error)
}

// Handler handles portfolio HTTP requests
type Handler struct {
	service         PortfolioServiceInterface
	defaultHoldings int
	log             zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service PortfolioServiceInterface, defaultHoldings int, log zerolog.Logger) *Handler {
	if defaultHoldings <= 0 {
		defaultHoldings = 5
	}
	return &Handler{
		service:         service,
		defaultHoldings: defaultHoldings,
		log:             log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetTotals returns the portfolio-level summary
func (h *Handler) HandleGetTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.GetTotals()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to calculate portfolio totals")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"market_value":     totals.MarketValue,
			"cost_basis":       totals.CostBasis,
			"invested":         totals.Invested,
			"realized_pnl":     totals.RealizedPnL,
			"unrealized_pnl":   totals.UnrealizedPnL,
			"total_return_pct": totals.TotalReturnPct,
			"positions":        totals.Positions,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// HandleGetHoldings returns the largest open positions.
// The optional limit query parameter overrides the configured default.
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultHoldings
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	holdings, err := h.service.GetHoldings(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build holdings view")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]map[string]interface{}, 0, len(holdings))
	for _, holding := range holdings {
		result = append(result, map[string]interface{}{
			"symbol":       holding.Symbol,
			"name":         holding.Name,
			"quantity":     holding.Quantity,
			"price":        holding.Price,
			"market_value": holding.MarketValue,
			"avg_cost":     holding.AvgCost,
			"weight":       holding.Weight,
			"gain_pct":     holding.GainPct,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"limit":     limit,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
