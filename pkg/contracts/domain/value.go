package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindEmpty represents a blank or unparseable cell.
	KindEmpty Kind = iota
	// KindNumber represents a numeric cell.
	KindNumber
	// KindText represents a textual cell.
	KindText
	// KindDate represents a date cell.
	KindDate
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a tagged spreadsheet cell value. Cells are always one of
// number, text, date or empty; a Value is never "missing", absence is
// modelled as KindEmpty so downstream code can read any field without
// nil checks.
type Value struct {
	Kind   Kind      `json:"kind"`
	Number float64   `json:"number,omitempty"`
	Text   string    `json:"text,omitempty"`
	Date   time.Time `json:"date,omitempty"`
}

// EmptyValue returns the empty value.
func EmptyValue() Value {
	return Value{Kind: KindEmpty}
}

// NumberValue wraps a float64 as a numeric value.
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// TextValue wraps a string as a text value. An all-whitespace string is
// still text; callers that want blank detection use IsEmpty.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// DateValue wraps a time.Time as a date value.
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, Date: t}
}

// IsEmpty reports whether the value carries no usable content.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(v.Text) == ""
	case KindDate:
		return v.Date.IsZero()
	default:
		return false
	}
}

// AsString renders the value for display or grouping-key purposes.
func (v Value) AsString() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// AsFloat returns the numeric content, or 0 for non-numeric values.
func (v Value) AsFloat() float64 {
	if v.Kind == KindNumber {
		return v.Number
	}
	return 0
}

// AsDate returns the date content and whether one is present.
func (v Value) AsDate() (time.Time, bool) {
	if v.Kind == KindDate && !v.Date.IsZero() {
		return v.Date, true
	}
	return time.Time{}, false
}

// GoString aids debugging output in tests.
func (v Value) GoString() string {
	return fmt.Sprintf("domain.Value{%s:%q}", v.Kind, v.AsString())
}
