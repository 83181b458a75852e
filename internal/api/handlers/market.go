package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/internal/stats"
	"github.com/wonny/stockmarket/pkg/logger"
)

// MarketHandler serves quotes and history of the registry's stocks
// ⭐ SSOT: read access to the market over HTTP goes through here
type MarketHandler struct {
	registry *registry.Registry
	logger   *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(reg *registry.Registry, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		registry: reg,
		logger:   log,
	}
}

// MarketResponse is the body of GET /api/stocks
type MarketResponse struct {
	Now    time.Time     `json:"now"`
	Count  int           `json:"count"`
	Quotes []stats.Quote `json:"quotes"`
}

// ListStocks returns the quotes of every stock in registry order
// GET /api/stocks
func (h *MarketHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	quotes := h.registry.Quotes()
	respondJSON(w, http.StatusOK, MarketResponse{
		Now:    h.registry.Now(),
		Count:  len(quotes),
		Quotes: quotes,
	})
}

// GetStock returns the quote of one stock
// GET /api/stocks/{symbol}
func (h *MarketHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quote, err := h.registry.Quote(symbol)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// HistoryRecord is one committed trading day. AgeDays is counted from the
// current market day, the same age weekly and monthly anchors use.
type HistoryRecord struct {
	Date    string `json:"date"`
	Open    string `json:"open"`
	AgeDays int    `json:"age_days"`
}

// GetHistory returns the committed trading days of a stock, oldest first
// GET /api/stocks/{symbol}/history
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	records, err := h.registry.History(symbol)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	now := h.registry.Now()
	out := make([]HistoryRecord, len(records))
	for i, rec := range records {
		out[i] = HistoryRecord{
			Date:    rec.Date.Format(market.DateFormat),
			Open:    rec.Open.StringFixed(market.PriceDigits),
			AgeDays: market.DaysBetween(rec.Date, now),
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"count":   len(out),
		"history": out,
	})
}

// AddStockRequest is the body of POST /api/stocks
type AddStockRequest struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Volatility float64         `json:"volatility"`
}

// AddStock lists a new stock on the market
// POST /api/stocks
func (h *MarketHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" || !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "symbol and a positive price are required")
		return
	}
	if req.Volatility < 0 || req.Volatility > market.MaxVolatility {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("volatility must be in [0, %g]", market.MaxVolatility))
		return
	}

	if _, err := h.registry.Add(req.Symbol, req.Price, req.Volatility); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"symbol": req.Symbol,
		"price":  req.Price.String(),
	}).Info("Stock listed")

	quote, err := h.registry.Quote(req.Symbol)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, quote)
}
