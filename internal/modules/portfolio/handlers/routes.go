package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/totals", h.HandleGetTotals)     // Portfolio summary
		r.Get("/holdings", h.HandleGetHoldings) // Ranked open positions
	})
}
