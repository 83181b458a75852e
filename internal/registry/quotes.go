package registry

import (
	"time"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/stats"
)

// Now is the market's current time: the last tick, or the start before the
// first one. Window statistics are evaluated at this time.
func (r *Registry) Now() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now()
}

func (r *Registry) now() time.Time {
	if r.lastTick.IsZero() {
		return r.start
	}
	return r.lastTick
}

// Quote returns the display figures of one stock
func (r *Registry) Quote(symbol string) (stats.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stock, ok := r.bySymbol[symbol]
	if !ok {
		return stats.Quote{}, &market.NotFoundError{Symbol: symbol}
	}
	return stats.QuoteOf(stock, r.now()), nil
}

// Quotes returns the quotes of every stock in registry order
func (r *Registry) Quotes() []stats.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stats.Quote, len(r.stocks))
	for i, s := range r.stocks {
		out[i] = stats.QuoteOf(s, r.now())
	}
	return out
}

// QuoteSlots quotes a page of slots without letting a tick interleave.
// nil slots stay nil.
func (r *Registry) QuoteSlots(slots []*market.Stock) []*stats.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return stats.QuotesOf(slots, r.now())
}

// History returns a copy of a stock's committed trading days
func (r *Registry) History(symbol string) ([]market.HistoricalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stock, ok := r.bySymbol[symbol]
	if !ok {
		return nil, &market.NotFoundError{Symbol: symbol}
	}
	return stock.History.Records(), nil
}
