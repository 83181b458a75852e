package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
)

// Comparison windows in days
const (
	WeekDays  = 7
	MonthDays = 30
)

var hundred = decimal.NewFromInt(100)

// DailyChange is the absolute move since the day opened, rounded to 2 digits.
func DailyChange(stock *market.Stock) decimal.Decimal {
	return stock.Price.Sub(stock.OpeningPrice).RoundBank(2)
}

// PercentageChange compares current against reference.
//
// A zero reference has no finite ratio: a positive current is reported as
// +infinity, a negative one as -infinity and zero against zero as 0.
func PercentageChange(current, reference decimal.Decimal) Change {
	if !reference.IsZero() {
		// DivRound keeps 16 digits before the final rounding.
		pct := current.Sub(reference).DivRound(reference, 16).Mul(hundred)
		return FiniteChange(pct.RoundBank(2))
	}

	switch current.Sign() {
	case 1:
		return Change{Kind: PositiveInfinite}
	case -1:
		return Change{Kind: NegativeInfinite}
	default:
		return FiniteChange(decimal.Zero)
	}
}

// DailyPercentage compares the price with the day's opening price
func DailyPercentage(stock *market.Stock) Change {
	return PercentageChange(stock.Price, stock.OpeningPrice)
}

// WindowChange compares the price with the opening price of the newest day
// at least days old. Unavailable when the history is younger than the window.
func WindowChange(stock *market.Stock, now time.Time, days int) Change {
	anchor, ok := stock.History.FindAnchor(now, days)
	if !ok {
		return Change{Kind: Unavailable}
	}
	return PercentageChange(stock.Price, anchor.Open)
}

// WeeklyChange is WindowChange over WeekDays
func WeeklyChange(stock *market.Stock, now time.Time) Change {
	return WindowChange(stock, now, WeekDays)
}

// MonthlyChange is WindowChange over MonthDays
func MonthlyChange(stock *market.Stock, now time.Time) Change {
	return WindowChange(stock, now, MonthDays)
}
