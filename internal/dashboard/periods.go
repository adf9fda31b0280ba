package dashboard

import "github.com/bighogz/stockdiag/internal/models"

// DefaultPeriod is used when a request names no period.
const DefaultPeriod = "1mo"

// WindowFor maps a period code to the upstream range and bar interval.
// Unknown codes fall back to one month of daily bars.
func WindowFor(code string) models.Window {
	switch code {
	case "1d":
		return models.Window{Range: "1d", Interval: "1h"}
	case "5d":
		return models.Window{Range: "5d", Interval: "1d"}
	case "3mo":
		return models.Window{Range: "3mo", Interval: "1d"}
	default:
		return models.Window{Range: "1mo", Interval: "1d"}
	}
}
