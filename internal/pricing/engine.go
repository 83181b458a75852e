package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
)

// Engine applies a Strategy to stocks, one tick at a time.
// ⭐ SSOT: the only writer of Stock.Price, OpeningPrice and History
type Engine struct {
	strategy      Strategy
	retentionDays int
}

// Option configures an Engine
type Option func(*Engine)

// WithRetention prunes history that can no longer anchor a window of days.
// 0 keeps everything.
func WithRetention(days int) Option {
	return func(e *Engine) { e.retentionDays = days }
}

// NewEngine creates an engine around strategy
func NewEngine(strategy Strategy, opts ...Option) *Engine {
	e := &Engine{strategy: strategy}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckTick reports whether now may advance stock, including whether the
// day rollover it would cause can be committed.
func CheckTick(stock *market.Stock, now time.Time) error {
	if !stock.LastTick.IsZero() && !now.After(stock.LastTick) {
		return &market.NonMonotonicTimeError{Symbol: stock.Symbol, Last: stock.LastTick, Got: now}
	}
	if market.Day(now).After(stock.TradingDay) {
		if last, ok := stock.History.Last(); ok && !last.Date.Before(stock.TradingDay) {
			return fmt.Errorf("%s: %w", stock.Symbol, &market.DuplicateDateError{Date: stock.TradingDay})
		}
	}
	return nil
}

// Advance moves stock to now.
//
// When now falls on a later day than the stock's trading day, the day that
// just ended is committed to history with its opening price and the new day
// opens at the current price. The strategy then moves the price.
func (e *Engine) Advance(stock *market.Stock, now time.Time) error {
	if err := CheckTick(stock, now); err != nil {
		return err
	}

	today := market.Day(now)
	if today.After(stock.TradingDay) {
		record := market.HistoricalRecord{Date: stock.TradingDay, Open: stock.OpeningPrice}
		if err := stock.History.Append(record); err != nil {
			return fmt.Errorf("%s: commit trading day: %w", stock.Symbol, err)
		}
		stock.OpeningPrice = stock.Price
		stock.TradingDay = today

		if e.retentionDays > 0 {
			stock.History.Prune(now, e.retentionDays)
		}
	}

	next := e.strategy.Next(stock, now)
	if next.IsNegative() {
		next = decimal.Zero
	}
	stock.Price = market.RoundPrice(next)
	stock.LastTick = now

	return nil
}
