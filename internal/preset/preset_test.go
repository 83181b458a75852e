package preset

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/pricing"
	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/pkg/logger"
)

func TestLoad(t *testing.T) {
	p, err := Load("testdata/small.yaml")
	require.NoError(t, err)

	assert.Equal(t, "small", p.Name)
	require.Len(t, p.Stocks, 2)
	assert.Equal(t, "ACME", p.Stocks[0].Symbol)
	assert.True(t, p.Stocks[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 0.02, p.Stocks[0].Volatility)
	assert.Equal(t, "12.5", p.Stocks[1].Price.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("name: x\nstocks:\n  - symbol: A\n    price: 1\n    volatilty: 0.1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"no name", "stocks:\n  - {symbol: A, price: 1}\n", "name"},
		{"no stocks", "name: x\n", "stocks"},
		{"lowercase symbol", "name: x\nstocks:\n  - {symbol: acme, price: 1}\n", "stocks[0].symbol"},
		{"duplicate symbol", "name: x\nstocks:\n  - {symbol: A, price: 1}\n  - {symbol: A, price: 2}\n", "stocks[1].symbol"},
		{"zero price", "name: x\nstocks:\n  - {symbol: A, price: 0}\n", "stocks[0].price"},
		{"negative volatility", "name: x\nstocks:\n  - {symbol: A, price: 1, volatility: -0.1}\n", "stocks[0].volatility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, Validate(p))
	assert.Empty(t, Warn(p))
	assert.Greater(t, len(p.Stocks), 5, "the default fills more than one page")
}

func TestWarn(t *testing.T) {
	p := &Preset{Name: "w", Stocks: []Entry{
		{Symbol: "A", Price: decimal.RequireFromString("1.005")},
		{Symbol: "B", Price: decimal.NewFromInt(1), Volatility: 0.5},
	}}

	var codes []string
	for _, w := range Warn(p) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"DEFAULT_VOLATILITY", "PRICE_PRECISION", "HIGH_VOLATILITY"}, codes)
}

func TestHash(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := Default()
	other.Stocks[0].Price = other.Stocks[0].Price.Add(decimal.NewFromInt(1))
	c, err := Hash(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestApply(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reg := registry.New(pricing.NewEngine(pricing.NewScripted(nil)), start, logger.Nop())

	require.NoError(t, Default().Apply(reg))
	assert.Equal(t, len(Default().Stocks), reg.Len())

	stock, err := reg.Get("KAIZ")
	require.NoError(t, err)
	assert.Equal(t, "142.5", stock.Price.String())

	err = Default().Apply(reg)
	assert.ErrorIs(t, err, market.ErrDuplicateSymbol)
}
