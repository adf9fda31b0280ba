package diagnosis

const (
	labelDay   = "1 day"
	labelWeek  = "5 days"
	labelMonth = "1 month"
)

// PeriodLabelFor maps a period code to its display label.
// Unknown codes are returned unchanged.
func PeriodLabelFor(code string) string {
	switch code {
	case "1d":
		return labelDay
	case "5d":
		return labelWeek
	case "1mo":
		return labelMonth
	case "3mo":
		return "3 months"
	}
	return code
}
