package stats

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind tags the variant held by a Change
type Kind int

const (
	// Unavailable means there is not enough history for the comparison.
	Unavailable Kind = iota
	Finite
	PositiveInfinite
	NegativeInfinite
)

var kindNames = map[Kind]string{
	Unavailable:      "unavailable",
	Finite:           "finite",
	PositiveInfinite: "+inf",
	NegativeInfinite: "-inf",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Change is a percentage change: a rounded number, one of the two
// infinities, or unavailable. The zero value is Unavailable.
type Change struct {
	Kind  Kind
	Value decimal.Decimal // only meaningful for Finite
}

// FiniteChange wraps a rounded percentage
func FiniteChange(v decimal.Decimal) Change { return Change{Kind: Finite, Value: v} }

// Sign classifies the change: -1 down, 0 flat or unavailable, +1 up.
func (c Change) Sign() int {
	switch c.Kind {
	case PositiveInfinite:
		return 1
	case NegativeInfinite:
		return -1
	case Finite:
		return c.Value.Sign()
	default:
		return 0
	}
}

// String renders the change for display
func (c Change) String() string {
	switch c.Kind {
	case Finite:
		return c.Value.StringFixed(2) + " %"
	case PositiveInfinite:
		return "∞ %"
	case NegativeInfinite:
		return "-∞ %"
	default:
		return "/"
	}
}

type changeJSON struct {
	Kind  string  `json:"kind"`
	Value *string `json:"value,omitempty"`
}

// MarshalJSON encodes {"kind":"finite","value":"5.00"}; other kinds carry no value.
func (c Change) MarshalJSON() ([]byte, error) {
	out := changeJSON{Kind: c.Kind.String()}
	if c.Kind == Finite {
		v := c.Value.StringFixed(2)
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the MarshalJSON form
func (c *Change) UnmarshalJSON(data []byte) error {
	var in changeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	for k, name := range kindNames {
		if name != in.Kind {
			continue
		}
		*c = Change{Kind: k}
		if k == Finite {
			if in.Value == nil {
				return fmt.Errorf("finite change without value")
			}
			v, err := decimal.NewFromString(*in.Value)
			if err != nil {
				return fmt.Errorf("finite change value: %w", err)
			}
			c.Value = v
		}
		return nil
	}
	return fmt.Errorf("unknown change kind %q", in.Kind)
}
