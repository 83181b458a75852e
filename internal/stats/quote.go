package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
)

// Trend is the three-way colour classification of a move
type Trend string

const (
	Flat Trend = "flat"
	Up   Trend = "up"
	Down Trend = "down"
)

// TrendOf maps a sign to its Trend
func TrendOf(sign int) Trend {
	switch {
	case sign > 0:
		return Up
	case sign < 0:
		return Down
	default:
		return Flat
	}
}

// Quote is everything a display slot shows for one stock
type Quote struct {
	Symbol     string
	Price      decimal.Decimal
	Today      decimal.Decimal
	TodayTrend Trend
	Daily      Change
	Weekly     Change
	Monthly    Change
}

// QuoteOf computes the quote of stock at now. It only reads the stock.
func QuoteOf(stock *market.Stock, now time.Time) Quote {
	today := DailyChange(stock)
	return Quote{
		Symbol:     stock.Symbol,
		Price:      stock.Price,
		Today:      today,
		TodayTrend: TrendOf(today.Sign()),
		Daily:      DailyPercentage(stock),
		Weekly:     WeeklyChange(stock, now),
		Monthly:    MonthlyChange(stock, now),
	}
}

// QuotesOf maps a page of slots to quotes, keeping nil slots as nil.
func QuotesOf(slots []*market.Stock, now time.Time) []*Quote {
	out := make([]*Quote, len(slots))
	for i, s := range slots {
		if s == nil {
			continue
		}
		q := QuoteOf(s, now)
		out[i] = &q
	}
	return out
}

// quoteJSON is the wire form of a Quote
type quoteJSON struct {
	Symbol     string `json:"symbol"`
	Price      string `json:"price"`
	Today      string `json:"today"`
	TodayTrend Trend  `json:"today_trend"`
	Daily      Change `json:"daily"`
	Weekly     Change `json:"weekly"`
	Monthly    Change `json:"monthly"`
}

// MarshalJSON renders prices as fixed 2-digit strings ("105.00").
func (q Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(quoteJSON{
		Symbol:     q.Symbol,
		Price:      q.Price.StringFixed(2),
		Today:      q.Today.StringFixed(2),
		TodayTrend: q.TodayTrend,
		Daily:      q.Daily,
		Weekly:     q.Weekly,
		Monthly:    q.Monthly,
	})
}

// UnmarshalJSON decodes the MarshalJSON form
func (q *Quote) UnmarshalJSON(data []byte) error {
	var in quoteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return fmt.Errorf("quote %s price: %w", in.Symbol, err)
	}
	today, err := decimal.NewFromString(in.Today)
	if err != nil {
		return fmt.Errorf("quote %s today: %w", in.Symbol, err)
	}

	*q = Quote{
		Symbol:     in.Symbol,
		Price:      price,
		Today:      today,
		TodayTrend: in.TodayTrend,
		Daily:      in.Daily,
		Weekly:     in.Weekly,
		Monthly:    in.Monthly,
	}
	return nil
}
