package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceDigits is the number of fractional digits prices are kept at.
const PriceDigits = 2

// MaxVolatility is the largest daily volatility a stock may carry.
const MaxVolatility = 1.0

// RoundPrice rounds to PriceDigits using banker's rounding, so a midpoint
// like 0.125 settles to 0.12 rather than drifting upward over many ticks.
func RoundPrice(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(PriceDigits)
}

// Stock is one synthetic security and its live state.
// Only the pricing engine mutates the price fields.
type Stock struct {
	Symbol       string
	Price        decimal.Decimal
	OpeningPrice decimal.Decimal

	// TradingDay is the day OpeningPrice was taken on.
	TradingDay time.Time
	// LastTick is the last time the engine advanced this stock; zero before the first tick.
	LastTick time.Time

	// Volatility is the daily standard deviation of log returns used by random strategies.
	Volatility float64

	History *Ledger
}

// NewStock creates a stock that opens at price on the day of start.
func NewStock(symbol string, price decimal.Decimal, volatility float64, start time.Time) *Stock {
	p := RoundPrice(price)
	return &Stock{
		Symbol:       symbol,
		Price:        p,
		OpeningPrice: p,
		TradingDay:   Day(start),
		Volatility:   volatility,
		History:      &Ledger{},
	}
}
