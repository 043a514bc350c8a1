package export

import (
	"fmt"
	"strconv"
)

// formatAmount renders monetary values with exactly 2 decimal places so
// spreadsheet tools align columns consistently.
func formatAmount(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatPct renders a 0..1 fraction as a percentage with 1 decimal.
func formatPct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// formatRate renders a 0..1 fraction with 4 decimals, for scores and
// shares consumed by downstream tooling rather than people.
func formatRate(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
