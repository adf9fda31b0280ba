// Package metrics computes return, volatility and trend over a closing-price series.
// Every function is pure: inputs are never modified and no state is kept.
package metrics

import "math"

// DefaultWindow is the moving-average lookback used for trend classification.
const DefaultWindow = 50

const (
	lowVolatility      = 0.01
	moderateVolatility = 0.02

	trendBand = 0.01
)

// Summary bundles every metric the dashboard shows for one series.
type Summary struct {
	Return          float64
	Volatility      float64
	VolatilityClass VolatilityClass
	MovingAverage   float64
	Trend           TrendClass
}

// Analyze runs every metric over prices.
func Analyze(prices []float64) Summary {
	vol := ComputeVolatility(prices)
	return Summary{
		Return:          ComputeReturn(prices),
		Volatility:      vol,
		VolatilityClass: ClassifyVolatility(vol),
		MovingAverage:   MovingAverage(prices, min(DefaultWindow, len(prices))),
		Trend:           ClassifyTrend(prices),
	}
}

// ComputeReturn returns (last-first)/first as a fraction.
// Returns 0 for fewer than 2 prices or a zero first price.
func ComputeReturn(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	first := prices[0]
	if first == 0 {
		return 0
	}
	r := (prices[len(prices)-1] - first) / first
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// ComputeVolatility returns the population standard deviation of day-over-day
// simple returns. Pairs with a zero previous price are skipped.
func ComputeVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}
	n := float64(len(returns))
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / n
	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	return math.Sqrt(sq / n)
}

func ClassifyVolatility(vol float64) VolatilityClass {
	switch {
	case vol < lowVolatility:
		return VolatilityLow
	case vol < moderateVolatility:
		return VolatilityModerate
	default:
		return VolatilityHigh
	}
}

// MovingAverage is the arithmetic mean of the last min(window, len(prices)) prices.
// A non-positive window averages the whole series; an empty series yields 0.
func MovingAverage(prices []float64, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if window <= 0 || window > len(prices) {
		window = len(prices)
	}
	var sum float64
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return sum / float64(window)
}

// ClassifyTrend compares the latest price with the moving average of up to
// DefaultWindow prices, using a 1% band on each side.
func ClassifyTrend(prices []float64) TrendClass {
	if len(prices) < 2 {
		return TrendSideways
	}
	avg := MovingAverage(prices, min(DefaultWindow, len(prices)))
	return trendFor(prices[len(prices)-1], avg)
}

func trendFor(current, avg float64) TrendClass {
	switch {
	case current > avg*(1+trendBand):
		return TrendUp
	case current < avg*(1-trendBand):
		return TrendDown
	default:
		return TrendSideways
	}
}
