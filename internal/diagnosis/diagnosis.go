// Package diagnosis renders metric classifications as a short plain-language summary.
package diagnosis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bighogz/stockdiag/internal/metrics"
)

var ErrUnknownClass = errors.New("diagnosis: unknown classification")

const Disclaimer = "This analysis is educational and does not constitute investment advice."

// Input is everything Generate needs; all fields are required.
type Input struct {
	Return      float64
	Volatility  metrics.VolatilityClass
	Trend       metrics.TrendClass
	PeriodLabel string
}

// Generate returns the opening sentence, one bullet each for return,
// volatility and trend, and the disclaimer.
func Generate(in Input) (string, error) {
	vol, err := volatilityBullet(in.Volatility)
	if err != nil {
		return "", err
	}
	trend, err := trendBullet(in.Trend)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(opening(in.PeriodLabel))
	sb.WriteString("\n\n")
	sb.WriteString(returnBullet(in.Return))
	sb.WriteString("\n")
	sb.WriteString(vol)
	sb.WriteString("\n")
	sb.WriteString(trend)
	sb.WriteString("\n\n")
	sb.WriteString(Disclaimer)
	return sb.String(), nil
}

func opening(label string) string {
	switch label {
	case labelDay:
		return "In today's trading session, the asset's behavior indicates:"
	case labelWeek, labelMonth:
		return fmt.Sprintf("Over the last %s, the asset's behavior indicates:", label)
	default:
		return fmt.Sprintf("Over the last %s, the asset's historical behavior indicates:", label)
	}
}

func returnBullet(r float64) string {
	if r >= 0 {
		return fmt.Sprintf("• Return of %.1f%%, indicating appreciation over the period.", r*100)
	}
	return fmt.Sprintf("• Decline of %.1f%%, indicating devaluation over the period.", math.Abs(r*100))
}

func volatilityBullet(c metrics.VolatilityClass) (string, error) {
	switch c {
	case metrics.VolatilityLow:
		return "• Low price swings, suggesting stable behavior.", nil
	case metrics.VolatilityModerate:
		return "• Moderate price swings, indicating controlled risk.", nil
	case metrics.VolatilityHigh:
		return "• Wide price swings, indicating elevated risk.", nil
	}
	return "", fmt.Errorf("%w: volatility %d", ErrUnknownClass, int(c))
}

func trendBullet(c metrics.TrendClass) (string, error) {
	switch c {
	case metrics.TrendUp:
		return "• Uptrend, suggesting upward strength in the current move.", nil
	case metrics.TrendDown:
		return "• Downtrend, indicating weakening of the price.", nil
	case metrics.TrendSideways:
		return "• Sideways trend, indicating no clear direction.", nil
	}
	return "", fmt.Errorf("%w: trend %d", ErrUnknownClass, int(c))
}
