package pricing

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
)

// Strategy produces the next raw price of a stock. The engine rounds and
// clamps whatever a strategy returns, so implementations may ignore both.
type Strategy interface {
	Next(stock *market.Stock, now time.Time) decimal.Decimal
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(stock *market.Stock, now time.Time) decimal.Decimal

func (f StrategyFunc) Next(stock *market.Stock, now time.Time) decimal.Decimal { return f(stock, now) }

// RandomWalk moves prices by a Gaussian log-return scaled to the time elapsed
// since the stock's previous tick:
//
//	ret = drift*dt + vol*sqrt(dt)*N(0,1), dt in days
//
// Given the same seed and the same tick sequence it reproduces the same prices.
type RandomWalk struct {
	mu    sync.Mutex
	rng   *rand.Rand
	drift float64

	// DefaultVolatility is used for stocks without their own.
	DefaultVolatility float64
}

// maxLogReturn bounds a single move. exp() of anything larger overflows a
// float64, so such a draw leaves the price where it is.
const maxLogReturn = 700

// NewRandomWalk creates a random walk. seed 0 seeds from the wall clock.
func NewRandomWalk(seed int64, drift float64) *RandomWalk {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomWalk{
		rng:               rand.New(rand.NewSource(seed)),
		drift:             drift,
		DefaultVolatility: 0.02,
	}
}

// Next implements Strategy.
func (w *RandomWalk) Next(stock *market.Stock, now time.Time) decimal.Decimal {
	dt := 1.0
	if !stock.LastTick.IsZero() {
		dt = now.Sub(stock.LastTick).Hours() / 24
	}

	vol := stock.Volatility
	if vol <= 0 {
		vol = w.DefaultVolatility
	}

	w.mu.Lock()
	z := w.rng.NormFloat64()
	w.mu.Unlock()

	ret := w.drift*dt + vol*math.Sqrt(dt)*z
	if math.IsNaN(ret) || math.Abs(ret) > maxLogReturn {
		return stock.Price
	}
	return stock.Price.Mul(decimal.NewFromFloat(math.Exp(ret)))
}

// Scripted replays a fixed price sequence per symbol, one entry per call.
// Once a script runs out the stock keeps its current price; symbols without
// a script never move.
type Scripted struct {
	mu      sync.Mutex
	scripts map[string][]decimal.Decimal
}

// NewScripted creates a scripted strategy.
func NewScripted(scripts map[string][]decimal.Decimal) *Scripted {
	copied := make(map[string][]decimal.Decimal, len(scripts))
	for sym, prices := range scripts {
		copied[sym] = append([]decimal.Decimal(nil), prices...)
	}
	return &Scripted{scripts: copied}
}

// Next implements Strategy.
func (s *Scripted) Next(stock *market.Stock, _ time.Time) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := s.scripts[stock.Symbol]
	if len(prices) == 0 {
		return stock.Price
	}
	s.scripts[stock.Symbol] = prices[1:]
	return prices[0]
}
