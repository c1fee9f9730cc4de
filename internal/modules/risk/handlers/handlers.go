// Package handlers provides HTTP handlers for risk analytics.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/lookout/internal/modules/risk"
	"github.com/rs/zerolog"
)

// RiskServiceInterface defines the risk operations used by handlers
type RiskServiceInterface interface {
	GetMetrics(lookbackDays int) (*risk.Metrics, error)
}

// Handler handles risk HTTP requests
type Handler struct {
	service RiskServiceInterface
	log     zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(service RiskServiceInterface, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetMetrics returns the portfolio risk profile.
// The optional lookback query parameter overrides the configured window.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	lookback := 0
	if raw := r.URL.Query().Get("lookback"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2 {
			h.writeError(w, http.StatusBadRequest, "lookback must be an integer of at least 2")
			return
		}
		lookback = parsed
	}

	metrics, err := h.service.GetMetrics(lookback)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute risk metrics")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"score":                metrics.Score,
			"level":                metrics.Level,
			"volatility_pct":       metrics.VolatilityPct,
			"sharpe_ratio":         metrics.SharpeRatio,
			"max_drawdown_pct":     metrics.MaxDrawdownPct,
			"value_at_risk_95_pct": metrics.ValueAtRisk95Pct,
			"annual_return_pct":    metrics.AnnualReturnPct,
			"observations":         metrics.Observations,
			"latest_date":          metrics.LatestDate,
			"warnings":             metrics.Warnings,
		},
		"metadata": map[string]interface{}{
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"computation_id": metrics.ComputationID,
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
