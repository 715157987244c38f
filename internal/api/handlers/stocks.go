package handlers

import (
	"net/http"

	"github.com/wonny/betafolio/backend/internal/catalog"
	"github.com/wonny/betafolio/backend/internal/contracts"
)

// StockHandler serves the instrument catalog
type StockHandler struct {
	catalog *catalog.Catalog
}

// NewStockHandler creates a new stock handler
func NewStockHandler(cat *catalog.Catalog) *StockHandler {
	return &StockHandler{catalog: cat}
}

// StocksResponse is the catalog listing
type StocksResponse struct {
	Stocks  []contracts.Instrument `json:"stocks"`
	Total   int                    `json:"total"`
	Sectors []string               `json:"sectors"`
}

// GetStocks lists instruments, optionally filtered by sector and limited
// GET /api/stocks?sector=Technology&limit=5
func (h *StockHandler) GetStocks(w http.ResponseWriter, r *http.Request) {
	limit, _ := queryInt(r, "limit")
	stocks := h.catalog.Filter(r.URL.Query().Get("sector"), limit)

	respondJSON(w, http.StatusOK, StocksResponse{
		Stocks:  stocks,
		Total:   len(stocks),
		Sectors: h.catalog.Sectors(),
	})
}
