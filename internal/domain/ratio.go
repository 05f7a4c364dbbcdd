package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// UnboundedRatioText is the textual form of an unbounded stock-to-sale ratio.
const UnboundedRatioText = "inf"

// Ratio is a stock-to-sale ratio: either a finite quotient or Unbounded when
// nothing has been sold. Unbounded orders after every finite ratio.
type Ratio struct {
	value     float64
	unbounded bool
}

// FiniteRatio wraps a finite quotient.
func FiniteRatio(v float64) Ratio {
	return Ratio{value: v}
}

// UnboundedRatio returns the sentinel used when sold quantity is zero.
func UnboundedRatio() Ratio {
	return Ratio{unbounded: true}
}

// IsUnbounded reports whether r is the zero-sales sentinel.
func (r Ratio) IsUnbounded() bool {
	return r.unbounded
}

// Value returns the finite quotient and false for the unbounded sentinel.
func (r Ratio) Value() (float64, bool) {
	if r.unbounded {
		return 0, false
	}
	return r.value, true
}

// Compare returns -1, 0 or +1 ordering r against o.
func (r Ratio) Compare(o Ratio) int {
	switch {
	case r.unbounded && o.unbounded:
		return 0
	case r.unbounded:
		return 1
	case o.unbounded:
		return -1
	case r.value < o.value:
		return -1
	case r.value > o.value:
		return 1
	default:
		return 0
	}
}

// Less reports whether r sorts before o.
func (r Ratio) Less(o Ratio) bool {
	return r.Compare(o) < 0
}

func (r Ratio) String() string {
	if r.unbounded {
		return UnboundedRatioText
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// ParseRatio parses the textual form produced by String.
func ParseRatio(s string) (Ratio, error) {
	if s == UnboundedRatioText {
		return UnboundedRatio(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	return FiniteRatio(v), nil
}

// MarshalJSON encodes finite ratios as numbers and the sentinel as "inf".
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.unbounded {
		return json.Marshal(UnboundedRatioText)
	}
	return json.Marshal(r.value)
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseRatio(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid ratio %s: %w", string(data), err)
	}
	*r = FiniteRatio(v)
	return nil
}
