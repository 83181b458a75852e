package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockmarket/internal/market"
)

func walk(t *testing.T, seed int64, ticks int) []string {
	t.Helper()

	stocks := []*market.Stock{
		market.NewStock("AAA", d("100"), 0.03, start),
		market.NewStock("BBB", d("20"), 0, start),
	}
	engine := NewEngine(NewRandomWalk(seed, 0.001))

	var prices []string
	for i := 1; i <= ticks; i++ {
		now := start.Add(time.Duration(i) * 6 * time.Hour)
		for _, s := range stocks {
			require.NoError(t, engine.Advance(s, now))
			prices = append(prices, s.Price.String())
		}
	}
	return prices
}

func TestRandomWalk_Deterministic(t *testing.T) {
	a := walk(t, 42, 50)
	b := walk(t, 42, 50)
	assert.Equal(t, a, b)

	c := walk(t, 7, 50)
	assert.NotEqual(t, a, c)
}

func TestRandomWalk_NeverNegative(t *testing.T) {
	stock := market.NewStock("WILD", d("0.05"), 3.0, start)
	engine := NewEngine(NewRandomWalk(1, -0.5))

	for i := 1; i <= 500; i++ {
		require.NoError(t, engine.Advance(stock, start.Add(time.Duration(i)*time.Hour)))
		require.False(t, stock.Price.IsNegative(), "tick %d price %s", i, stock.Price)
	}
}

func TestRandomWalk_ExtremeReturnsKeepPrice(t *testing.T) {
	// Far outside what the registry accepts; the walk must still not panic.
	stock := market.NewStock("BIG", d("100"), 1000, start)
	engine := NewEngine(NewRandomWalk(1, 0))

	for i := 1; i <= 100; i++ {
		now := start.Add(time.Duration(i) * time.Hour)
		require.NotPanics(t, func() {
			require.NoError(t, engine.Advance(stock, now))
		}, "tick %d", i)
		require.False(t, stock.Price.IsNegative())
	}

	huge := NewRandomWalk(3, 1e6)
	calm := market.NewStock("CALM", d("10"), 0.01, start)
	calm.LastTick = start
	assert.Equal(t, "10", huge.Next(calm, start.AddDate(0, 0, 1)).String())
}

func TestScripted_HoldsWhenExhausted(t *testing.T) {
	stock := market.NewStock("ACME", d("10"), 0, start)
	other := market.NewStock("IDLE", d("3"), 0, start)
	s := NewScripted(map[string][]decimal.Decimal{"ACME": {d("11"), d("12")}})

	assert.Equal(t, "11", s.Next(stock, start).String())
	assert.Equal(t, "12", s.Next(stock, start).String())
	assert.Equal(t, "10", s.Next(stock, start).String())
	assert.Equal(t, "3", s.Next(other, start).String())
}
