package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockmarket/internal/market"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var day0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		reference string
		want      Change
	}{
		{"gain", "105", "100", FiniteChange(d("5"))},
		{"loss", "90", "120", FiniteChange(d("-25"))},
		{"rounded", "1", "3", FiniteChange(d("-66.67"))},
		{"tiny move rounds to zero", "100.001", "100", FiniteChange(d("0"))},
		{"flat", "42", "42", FiniteChange(d("0"))},
		{"zero reference positive current", "5", "0", Change{Kind: PositiveInfinite}},
		{"zero reference negative current", "-5", "0", Change{Kind: NegativeInfinite}},
		{"zero against zero", "0", "0", FiniteChange(d("0"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageChange(d(tt.current), d(tt.reference))
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.True(t, tt.want.Value.Equal(got.Value), "got %s want %s", got.Value, tt.want.Value)
		})
	}
}

func TestChange_SignAndString(t *testing.T) {
	tests := []struct {
		change Change
		sign   int
		text   string
	}{
		{FiniteChange(d("5")), 1, "5.00 %"},
		{FiniteChange(d("-0.5")), -1, "-0.50 %"},
		{FiniteChange(decimal.Zero), 0, "0.00 %"},
		{Change{Kind: PositiveInfinite}, 1, "∞ %"},
		{Change{Kind: NegativeInfinite}, -1, "-∞ %"},
		{Change{}, 0, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.sign, tt.change.Sign())
			assert.Equal(t, tt.text, tt.change.String())
		})
	}
}

func TestChange_JSON(t *testing.T) {
	tests := []struct {
		change Change
		json   string
	}{
		{FiniteChange(d("5")), `{"kind":"finite","value":"5.00"}`},
		{Change{Kind: PositiveInfinite}, `{"kind":"+inf"}`},
		{Change{Kind: NegativeInfinite}, `{"kind":"-inf"}`},
		{Change{Kind: Unavailable}, `{"kind":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.change.Kind.String(), func(t *testing.T) {
			data, err := json.Marshal(tt.change)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			var back Change
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.change.Kind, back.Kind)
			assert.True(t, tt.change.Value.Equal(back.Value))
		})
	}

	var bad Change
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"sideways"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"finite"}`), &bad))
}

func stockWithHistory(t *testing.T, price string, days int) *market.Stock {
	t.Helper()

	s := market.NewStock("ACME", d(price), 0, day0.AddDate(0, 0, days))
	for i := 0; i < days; i++ {
		require.NoError(t, s.History.Append(market.HistoricalRecord{
			Date: day0.AddDate(0, 0, i),
			Open: decimal.NewFromInt(int64(100 + i)),
		}))
	}
	return s
}

func TestWindowChanges(t *testing.T) {
	// History for days 0..9, today is day 10.
	s := stockWithHistory(t, "110", 10)
	now := day0.AddDate(0, 0, 10).Add(15 * time.Hour)

	weekly := WeeklyChange(s, now)
	require.Equal(t, Finite, weekly.Kind)
	// Anchor is day 3, opening at 103.
	assert.True(t, weekly.Value.Equal(d("6.8")), "got %s", weekly.Value)

	monthly := MonthlyChange(s, now)
	assert.Equal(t, Unavailable, monthly.Kind)
	assert.Equal(t, "/", monthly.String())
}

func TestWindowChange_ZeroAnchor(t *testing.T) {
	s := market.NewStock("ZERO", d("3"), 0, day0.AddDate(0, 0, 8))
	require.NoError(t, s.History.Append(market.HistoricalRecord{Date: day0, Open: decimal.Zero}))

	assert.Equal(t, PositiveInfinite, WeeklyChange(s, day0.AddDate(0, 0, 8)).Kind)
}

func TestDailyChange(t *testing.T) {
	s := market.NewStock("ACME", d("100"), 0, day0)
	s.Price = d("104.995")

	assert.Equal(t, "5.00", DailyChange(s).StringFixed(2))
	assert.Equal(t, FiniteChange(d("5")).String(), DailyPercentage(s).String())
}

func TestQuoteOf(t *testing.T) {
	s := market.NewStock("ACME", d("100"), 0, day0)
	s.Price = d("95.5")

	q := QuoteOf(s, day0.Add(time.Hour))
	assert.Equal(t, "ACME", q.Symbol)
	assert.Equal(t, "-4.50", q.Today.StringFixed(2))
	assert.Equal(t, Down, q.TodayTrend)
	assert.Equal(t, "-4.50 %", q.Daily.String())
	assert.Equal(t, Unavailable, q.Weekly.Kind)
	assert.Equal(t, Unavailable, q.Monthly.Kind)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"symbol":"ACME","price":"95.50","today":"-4.50","today_trend":"down",
		"daily":{"kind":"finite","value":"-4.50"},
		"weekly":{"kind":"unavailable"},
		"monthly":{"kind":"unavailable"}
	}`, string(data))

	var back Quote
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "ACME", back.Symbol)
	assert.True(t, back.Price.Equal(d("95.5")))
	assert.Equal(t, Down, back.TodayTrend)
	assert.Equal(t, q.Daily.String(), back.Daily.String())
	assert.Equal(t, Unavailable, back.Weekly.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"symbol":"X","price":"abc","today":"0"}`), &back))
}

func TestQuotesOf_KeepsEmptySlots(t *testing.T) {
	s := market.NewStock("ACME", d("1"), 0, day0)
	quotes := QuotesOf([]*market.Stock{s, nil, nil}, day0)

	require.Len(t, quotes, 3)
	assert.Equal(t, "ACME", quotes[0].Symbol)
	assert.Nil(t, quotes[1])
	assert.Nil(t, quotes[2])
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, Up, TrendOf(3))
	assert.Equal(t, Down, TrendOf(-1))
	assert.Equal(t, Flat, TrendOf(0))
}
