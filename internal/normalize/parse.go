// Package normalize turns positional grid rows into canonical typed
// rows: key cleanup, multi-line transaction stitching, noise filtering
// and currency normalization, in a single forward pass. Every parse
// function degrades to the empty variant instead of failing; one bad
// cell must never abort a multi-hundred-thousand-row file.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

// Excel serial dates count days from 1899-12-30. Serials below the
// cutoff are treated as plain numbers, matching the source convention
// of only trusting serials in the modern range (25569 = 1970-01-01).
const (
	excelSerialCutoff = 25569
	excelEpochOffset  = 25569
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseAmount reads a monetary cell. Currency symbols and codes,
// thousands separators and whitespace are stripped; accounting-style
// parentheses negate. Unparseable input yields (0, false).
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case r == ',', r == ' ', r == ' ':
			// thousands separators
		default:
			// currency symbols, codes, stray text
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// ParseDate reads a date cell. Numeric cells above the serial cutoff
// are interpreted as Excel day serials (1899-12-30 base); otherwise a
// list of common layouts is tried. Unparseable input yields a zero time
// and false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial > excelSerialCutoff {
			days := int(serial) - excelEpochOffset
			secs := (serial - float64(int(serial))) * 86400
			t := time.Unix(int64(days)*86400+int64(secs), 0).UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// NormalizeKey trims a column key and collapses internal whitespace
// runs to a single space, so keys damaged by merge resolution still
// match the resolved field mapping.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
