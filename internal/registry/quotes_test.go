package registry

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/pricing"
	"github.com/wonny/stockmarket/internal/stats"
	"github.com/wonny/stockmarket/pkg/logger"
)

func TestRegistry_Now(t *testing.T) {
	r := newRegistry(t, pricing.NewScripted(nil), "AAA")
	assert.Equal(t, start, r.Now())

	require.NoError(t, r.Tick(start.Add(time.Hour)))
	assert.Equal(t, start.Add(time.Hour), r.Now())
}

func TestRegistry_Quotes(t *testing.T) {
	prices := make([]decimal.Decimal, 0, 10)
	for i := 1; i <= 10; i++ {
		prices = append(prices, decimal.NewFromInt(int64(100+i)))
	}
	r := New(pricing.NewEngine(pricing.NewScripted(map[string][]decimal.Decimal{"ACME": prices})), start, logger.Nop())
	_, err := r.Add("ACME", d("100"), 0)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		require.NoError(t, r.Tick(start.AddDate(0, 0, i)))
	}

	q, err := r.Quote("ACME")
	require.NoError(t, err)
	assert.Equal(t, "110", q.Price.String())
	assert.Equal(t, stats.Finite, q.Weekly.Kind)
	assert.Equal(t, stats.Unavailable, q.Monthly.Kind)

	all := r.Quotes()
	require.Len(t, all, 1)
	assert.Equal(t, q.Symbol, all[0].Symbol)

	_, err = r.Quote("NOPE")
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestRegistry_QuoteSlots(t *testing.T) {
	r := newRegistry(t, pricing.NewScripted(nil), "AAA", "BBB")

	quotes := r.QuoteSlots([]*market.Stock{r.All()[1], nil})
	require.Len(t, quotes, 2)
	assert.Equal(t, "BBB", quotes[0].Symbol)
	assert.Nil(t, quotes[1])
}

func TestRegistry_History(t *testing.T) {
	r := newRegistry(t, pricing.NewScripted(nil), "AAA")
	require.NoError(t, r.Tick(start.AddDate(0, 0, 2)))

	records, err := r.History("AAA")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.Equal(market.Day(start)))

	_, err = r.History("NOPE")
	assert.ErrorIs(t, err, market.ErrNotFound)
}
