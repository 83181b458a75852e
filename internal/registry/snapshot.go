package registry

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/pkg/id"
)

// Snapshot is the complete resumable state of a registry
type Snapshot struct {
	ID       string       `json:"id"`
	TakenAt  time.Time    `json:"taken_at"`
	Start    time.Time    `json:"start"`
	LastTick time.Time    `json:"last_tick"`
	Stocks   []StockState `json:"stocks"`
}

// StockState is the persisted form of one stock
type StockState struct {
	Symbol       string                    `json:"symbol"`
	Price        decimal.Decimal           `json:"price"`
	OpeningPrice decimal.Decimal           `json:"opening_price"`
	TradingDay   time.Time                 `json:"trading_day"`
	LastTick     time.Time                 `json:"last_tick"`
	Volatility   float64                   `json:"volatility"`
	History      []market.HistoricalRecord `json:"history"`
}

// Snapshot copies the full registry state, stocks in registry order
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		ID:       id.New(),
		TakenAt:  time.Now().UTC(),
		Start:    r.start,
		LastTick: r.lastTick,
		Stocks:   make([]StockState, 0, len(r.stocks)),
	}

	for _, s := range r.stocks {
		snap.Stocks = append(snap.Stocks, StockState{
			Symbol:       s.Symbol,
			Price:        s.Price,
			OpeningPrice: s.OpeningPrice,
			TradingDay:   s.TradingDay,
			LastTick:     s.LastTick,
			Volatility:   s.Volatility,
			History:      s.History.Records(),
		})
	}

	return snap
}

// Restore replaces the registry state with snap. The snapshot is validated
// as a whole first; on error the registry is left untouched.
func (r *Registry) Restore(snap Snapshot) error {
	stocks := make([]*market.Stock, 0, len(snap.Stocks))
	bySymbol := make(map[string]*market.Stock, len(snap.Stocks))

	for i, st := range snap.Stocks {
		if st.Symbol == "" {
			return fmt.Errorf("%w: stock %d has no symbol", market.ErrInvalidSnapshot, i)
		}
		if _, dup := bySymbol[st.Symbol]; dup {
			return fmt.Errorf("%w: symbol %s appears twice", market.ErrInvalidSnapshot, st.Symbol)
		}
		if st.Price.IsNegative() || st.OpeningPrice.IsNegative() {
			return fmt.Errorf("%w: %s has a negative price", market.ErrInvalidSnapshot, st.Symbol)
		}
		if st.LastTick.After(snap.LastTick) {
			return fmt.Errorf("%w: %s ticked after the market", market.ErrInvalidSnapshot, st.Symbol)
		}

		ledger, err := market.NewLedger(st.History...)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", market.ErrInvalidSnapshot, st.Symbol, err)
		}
		for _, rec := range st.History {
			if rec.Open.IsNegative() {
				return fmt.Errorf("%w: %s has a negative opening price", market.ErrInvalidSnapshot, st.Symbol)
			}
		}
		// The open trading day is committed on the next rollover, so history
		// must end strictly before it.
		if last, ok := ledger.Last(); ok && !last.Date.Before(market.Day(st.TradingDay)) {
			return fmt.Errorf("%w: %s has history on or after its trading day %s",
				market.ErrInvalidSnapshot, st.Symbol, market.Day(st.TradingDay).Format(market.DateFormat))
		}
		if st.Volatility < 0 || st.Volatility > market.MaxVolatility {
			return fmt.Errorf("%w: %s volatility %g out of range", market.ErrInvalidSnapshot, st.Symbol, st.Volatility)
		}

		stock := &market.Stock{
			Symbol:       st.Symbol,
			Price:        st.Price,
			OpeningPrice: st.OpeningPrice,
			TradingDay:   market.Day(st.TradingDay),
			LastTick:     st.LastTick,
			Volatility:   st.Volatility,
			History:      ledger,
		}
		stocks = append(stocks, stock)
		bySymbol[st.Symbol] = stock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.start = snap.Start
	r.lastTick = snap.LastTick
	r.stocks = stocks
	r.bySymbol = bySymbol
	r.revision++

	return nil
}
