package aggregate

import (
	"fmt"
	"time"

	"spendscope/pkg/contracts/domain"
)

// FiscalPeriodFor maps a date onto the fiscal calendar. With the year
// starting at startMonth (zero-based), dates on or after the start
// month belong to the next-numbered fiscal year, and the period number
// counts months elapsed since the start month, 1-indexed and
// zero-padded ("P01" for the opening month).
func FiscalPeriodFor(date time.Time, startMonth int) domain.FiscalPeriod {
	if startMonth < 0 || startMonth > 11 {
		startMonth = DefaultFiscalYearStartMonth
	}

	monthIdx := int(date.Month()) - 1

	year := date.Year()
	if monthIdx >= startMonth {
		year++
	}

	period := (monthIdx-startMonth+12)%12 + 1

	return domain.FiscalPeriod{
		Year:   fmt.Sprintf("FY%d", year),
		Period: fmt.Sprintf("P%02d", period),
	}
}
