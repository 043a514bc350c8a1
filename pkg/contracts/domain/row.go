package domain

import (
	"sort"
	"strings"
)

// Row is a canonical transaction row: post-normalization column name to
// typed cell value. Lookups against unmapped or absent columns yield the
// empty value, never a missing-key panic or nil.
type Row map[string]Value

// Get returns the value for a column, or the empty value when the column
// is absent.
func (r Row) Get(column string) Value {
	if column == "" {
		return EmptyValue()
	}
	if v, ok := r[column]; ok {
		return v
	}
	return EmptyValue()
}

// Set stores a value under a column name. A nil receiver is not
// supported; rows are always allocated by the normalizer.
func (r Row) Set(column string, v Value) {
	r[column] = v
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a shallow copy of the row. Values are immutable so a
// shallow copy is a full copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for c, v := range r {
		out[c] = v
	}
	return out
}

// IsBlank reports whether every cell in the row trims to empty.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

// ContainsText reports whether any cell's lower-cased text contains the
// given needle. Used for subtotal/footer detection.
func (r Row) ContainsText(needle string) bool {
	needle = strings.ToLower(needle)
	for _, v := range r {
		if v.Kind != KindText {
			continue
		}
		if strings.Contains(strings.ToLower(v.Text), needle) {
			return true
		}
	}
	return false
}
