package preset

import (
	"fmt"
	"regexp"

	"github.com/wonny/stockmarket/internal/market"
)

// MaxVolatility is the largest daily volatility a preset may ask for
const MaxVolatility = market.MaxVolatility

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a legal but suspicious setting
type Warning struct {
	Code    string
	Message string
}

// Validate checks the hard constraints of a preset
func Validate(p *Preset) error {
	if p.Name == "" {
		return ValidationError{"name", "required"}
	}
	if len(p.Stocks) == 0 {
		return ValidationError{"stocks", "at least one stock required"}
	}

	seen := make(map[string]int, len(p.Stocks))
	for i, e := range p.Stocks {
		field := fmt.Sprintf("stocks[%d]", i)

		if !symbolPattern.MatchString(e.Symbol) {
			return ValidationError{field + ".symbol", fmt.Sprintf("invalid symbol %q", e.Symbol)}
		}
		if j, dup := seen[e.Symbol]; dup {
			return ValidationError{field + ".symbol", fmt.Sprintf("%s already defined at stocks[%d]", e.Symbol, j)}
		}
		seen[e.Symbol] = i

		if !e.Price.IsPositive() {
			return ValidationError{field + ".price", "must be > 0"}
		}
		if e.Volatility < 0 || e.Volatility > MaxVolatility {
			return ValidationError{field + ".volatility", fmt.Sprintf("must be in [0, %g]", MaxVolatility)}
		}
	}

	return nil
}

// Warn lists settings that load fine but probably are not what was meant
func Warn(p *Preset) []Warning {
	var warnings []Warning

	for _, e := range p.Stocks {
		if e.Volatility == 0 {
			warnings = append(warnings, Warning{
				Code:    "DEFAULT_VOLATILITY",
				Message: fmt.Sprintf("%s has no volatility, the strategy default applies", e.Symbol),
			})
		}
		if e.Volatility > 0.1 {
			warnings = append(warnings, Warning{
				Code:    "HIGH_VOLATILITY",
				Message: fmt.Sprintf("%s moves %.0f%% a day", e.Symbol, e.Volatility*100),
			})
		}
		if !e.Price.Equal(e.Price.RoundBank(2)) {
			warnings = append(warnings, Warning{
				Code:    "PRICE_PRECISION",
				Message: fmt.Sprintf("%s price %s is rounded to 2 digits", e.Symbol, e.Price),
			})
		}
	}

	return warnings
}
