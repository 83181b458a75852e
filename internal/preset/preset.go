// Package preset describes the stocks a market opens with.
package preset

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/market"
)

// Preset is the opening line-up of a market
type Preset struct {
	Name   string  `yaml:"name" json:"name"`
	Stocks []Entry `yaml:"stocks" json:"stocks"`
}

// Entry is one stock of a preset
type Entry struct {
	Symbol     string          `yaml:"symbol" json:"symbol"`
	Name       string          `yaml:"name,omitempty" json:"name,omitempty"`
	Price      decimal.Decimal `yaml:"price" json:"price"`
	Volatility float64         `yaml:"volatility,omitempty" json:"volatility,omitempty"`
}

// Adder is the registry surface a preset populates
type Adder interface {
	Add(symbol string, price decimal.Decimal, volatility float64) (*market.Stock, error)
}

// Apply adds every entry to reg in preset order
func (p *Preset) Apply(reg Adder) error {
	for _, e := range p.Stocks {
		if _, err := reg.Add(e.Symbol, e.Price, e.Volatility); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	return nil
}

// Default is the built-in line-up used when no preset file is configured
func Default() *Preset {
	entry := func(symbol, name, price string, vol float64) Entry {
		return Entry{Symbol: symbol, Name: name, Price: decimal.RequireFromString(price), Volatility: vol}
	}

	return &Preset{
		Name: "default",
		Stocks: []Entry{
			entry("KAIZ", "Kaizen-7 Industries", "142.50", 0.018),
			entry("CANL", "Canal Street Holdings", "38.20", 0.025),
			entry("STAR", "Starch Kola Co", "211.75", 0.012),
			entry("ECHO", "Echelon Systems", "87.10", 0.030),
			entry("FATH", "Fathoms Yard Shipping", "15.40", 0.040),
			entry("CRUN", "Cruncher Computing", "64.00", 0.022),
			entry("HENR", "Henrietta Realty", "122.35", 0.015),
			entry("VOLT", "Voltaic Grid", "9.85", 0.050),
			entry("NEON", "Neon Alley Media", "27.60", 0.028),
			entry("ORBT", "Orbital Freight", "176.90", 0.020),
			entry("BRCK", "Brickworks Construction", "53.45", 0.017),
			entry("LUMN", "Lumen Pharmaceuticals", "301.10", 0.033),
		},
	}
}
