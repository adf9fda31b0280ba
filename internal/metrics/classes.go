package metrics

import "fmt"

// VolatilityClass buckets a volatility value. The zero value is not a valid class.
type VolatilityClass int

const (
	VolatilityLow VolatilityClass = iota + 1
	VolatilityModerate
	VolatilityHigh
)

func (c VolatilityClass) Valid() bool {
	return c >= VolatilityLow && c <= VolatilityHigh
}

func (c VolatilityClass) String() string {
	switch c {
	case VolatilityLow:
		return "Low"
	case VolatilityModerate:
		return "Moderate"
	case VolatilityHigh:
		return "High"
	}
	return fmt.Sprintf("VolatilityClass(%d)", int(c))
}

func (c VolatilityClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("metrics: invalid volatility class %d", int(c))
	}
	return []byte(c.String()), nil
}

// TrendClass is the direction of the latest price against its moving average.
// The zero value is not a valid class.
type TrendClass int

const (
	TrendUp TrendClass = iota + 1
	TrendDown
	TrendSideways
)

func (c TrendClass) Valid() bool {
	return c >= TrendUp && c <= TrendSideways
}

func (c TrendClass) String() string {
	switch c {
	case TrendUp:
		return "Up"
	case TrendDown:
		return "Down"
	case TrendSideways:
		return "Sideways"
	}
	return fmt.Sprintf("TrendClass(%d)", int(c))
}

func (c TrendClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("metrics: invalid trend class %d", int(c))
	}
	return []byte(c.String()), nil
}
