package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/clock"
	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/pricing"
	"github.com/wonny/stockmarket/pkg/logger"
)

// Registry owns every stock of the market in a stable order
// ⭐ SSOT: stocks are created, looked up and ticked only through here
//
// The scheduler ticks while HTTP handlers read, so Tick/Add/Restore take the
// write lock and every read path goes through the read lock. Callers that
// hold *market.Stock pointers outside View must not race with Tick.
type Registry struct {
	mu       sync.RWMutex
	engine   *pricing.Engine
	logger   *logger.Logger
	start    time.Time
	lastTick time.Time
	revision uint64
	stocks   []*market.Stock
	bySymbol map[string]*market.Stock
}

// New creates an empty registry whose stocks open on the day of start
func New(engine *pricing.Engine, start time.Time, log *logger.Logger) *Registry {
	return &Registry{
		engine:   engine,
		logger:   log,
		start:    start,
		bySymbol: make(map[string]*market.Stock),
	}
}

// Add registers a new stock at price. Symbols are never reused.
func (r *Registry) Add(symbol string, price decimal.Decimal, volatility float64) (*market.Stock, error) {
	if symbol == "" {
		return nil, fmt.Errorf("add stock: empty symbol")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("add stock %s: negative price %s", symbol, price)
	}
	if volatility < 0 || volatility > market.MaxVolatility {
		return nil, fmt.Errorf("add stock %s: volatility %g outside [0, %g]", symbol, volatility, market.MaxVolatility)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySymbol[symbol]; exists {
		return nil, &market.DuplicateSymbolError{Symbol: symbol}
	}

	opening := r.start
	if !r.lastTick.IsZero() {
		opening = r.lastTick
	}

	stock := market.NewStock(symbol, price, volatility, opening)
	r.stocks = append(r.stocks, stock)
	r.bySymbol[symbol] = stock
	r.revision++

	return stock, nil
}

// All returns the stocks in registration order. The slice is a copy; the
// stocks are not.
func (r *Registry) All() []*market.Stock {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*market.Stock, len(r.stocks))
	copy(out, r.stocks)
	return out
}

// Get looks a stock up by symbol
func (r *Registry) Get(symbol string) (*market.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stock, ok := r.bySymbol[symbol]
	if !ok {
		return nil, &market.NotFoundError{Symbol: symbol}
	}
	return stock, nil
}

// Len returns the number of stocks
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stocks)
}

// LastTick returns the time of the last successful Tick, zero before the first
func (r *Registry) LastTick() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastTick
}

// Revision counts the changes made to the market. It moves on every Add,
// Tick and Restore, so an equal revision means an identical market.
func (r *Registry) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// View runs fn with the ordered stocks under the read lock. No tick can
// interleave with fn.
func (r *Registry) View(fn func(stocks []*market.Stock) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(r.stocks)
}

// Tick advances every stock to now, each exactly once.
//
// now must be strictly after the previous tick. The check runs against the
// registry and every stock before anything is touched, so a rejected tick
// leaves the market unchanged.
func (r *Registry) Tick(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lastTick.IsZero() && !now.After(r.lastTick) {
		return &market.NonMonotonicTimeError{Last: r.lastTick, Got: now}
	}
	for _, stock := range r.stocks {
		if err := pricing.CheckTick(stock, now); err != nil {
			return err
		}
	}

	var errs []error
	for _, stock := range r.stocks {
		if err := r.engine.Advance(stock, now); err != nil {
			errs = append(errs, err)
		}
	}
	r.lastTick = now
	r.revision++

	if len(errs) > 0 {
		return fmt.Errorf("tick %s: %w", now.Format(time.RFC3339), errors.Join(errs...))
	}
	return nil
}

// Attach ticks the registry on every clock event until the subscription is
// cancelled. Rejected ticks are logged, the clock keeps running.
func (r *Registry) Attach(c clock.Clock) clock.Subscription {
	return c.Subscribe(func(ev clock.TimeChanged) {
		if err := r.Tick(ev.Current); err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"previous": ev.Previous,
				"current":  ev.Current,
			}).Error("Market tick failed")
			return
		}

		r.logger.WithField("now", ev.Current).Debug("Market ticked")
	})
}
