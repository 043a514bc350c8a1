package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiscalPeriodFor(t *testing.T) {
	tests := []struct {
		name       string
		date       time.Time
		startMonth int
		wantYear   string
		wantPeriod string
	}{
		{
			name:       "april start opening day",
			date:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			startMonth: 3,
			wantYear:   "FY2025",
			wantPeriod: "P01",
		},
		{
			name:       "april start closing day",
			date:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			startMonth: 3,
			wantYear:   "FY2024",
			wantPeriod: "P12",
		},
		{
			name:       "april start mid year",
			date:       time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
			startMonth: 3,
			wantYear:   "FY2025",
			wantPeriod: "P09",
		},
		{
			name:       "calendar year start",
			date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			startMonth: 0,
			wantYear:   "FY2025",
			wantPeriod: "P01",
		},
		{
			name:       "october start",
			date:       time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
			startMonth: 9,
			wantYear:   "FY2024",
			wantPeriod: "P12",
		},
		{
			name:       "invalid start month falls back to april",
			date:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			startMonth: 42,
			wantYear:   "FY2025",
			wantPeriod: "P01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := FiscalPeriodFor(tt.date, tt.startMonth)
			assert.Equal(t, tt.wantYear, fp.Year)
			assert.Equal(t, tt.wantPeriod, fp.Period)
		})
	}
}

func TestFiscalPeriodCoversAllTwelve(t *testing.T) {
	seen := make(map[string]bool)
	for m := 1; m <= 12; m++ {
		fp := FiscalPeriodFor(time.Date(2024, time.Month(m), 15, 0, 0, 0, 0, time.UTC), 3)
		seen[fp.Period] = true
	}
	assert.Len(t, seen, 12)
	assert.True(t, seen["P01"])
	assert.True(t, seen["P12"])
}
