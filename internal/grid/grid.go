// Package grid holds the raw 2-D cell grid produced by file parsing and
// the two structural passes that run before any row is interpreted:
// header-row detection and merged-cell resolution. Cells stay untyped
// strings here; typed parsing happens downstream in normalize.
package grid

import "strings"

// MergeRange is one merged-cell rectangle, inclusive on both ends,
// zero-based row/column coordinates.
type MergeRange struct {
	StartRow int `json:"start_row"`
	StartCol int `json:"start_col"`
	EndRow   int `json:"end_row"`
	EndCol   int `json:"end_col"`
}

// Contains reports whether the coordinate lies inside the range.
func (m MergeRange) Contains(row, col int) bool {
	return row >= m.StartRow && row <= m.EndRow && col >= m.StartCol && col <= m.EndCol
}

// RawGrid is the immutable parse output: ordered rows of untyped cell
// values plus the workbook's merge ranges. Stages never mutate a grid in
// place; ResolveMerges returns a fresh copy.
type RawGrid struct {
	Cells  [][]string   `json:"cells"`
	Merges []MergeRange `json:"merges,omitempty"`
}

// RowCount returns the number of rows.
func (g *RawGrid) RowCount() int {
	return len(g.Cells)
}

// Cell returns the cell at the coordinate, or "" when the coordinate is
// outside the ragged row bounds.
func (g *RawGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Cells) {
		return ""
	}
	r := g.Cells[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Row returns a copy of the given row, or nil when out of range.
func (g *RawGrid) Row(row int) []string {
	if row < 0 || row >= len(g.Cells) {
		return nil
	}
	out := make([]string, len(g.Cells[row]))
	copy(out, g.Cells[row])
	return out
}

// IsRowEmpty reports whether every cell of the row trims to empty.
func (g *RawGrid) IsRowEmpty(row int) bool {
	if row < 0 || row >= len(g.Cells) {
		return true
	}
	for _, cell := range g.Cells[row] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the grid.
func (g *RawGrid) Clone() *RawGrid {
	cells := make([][]string, len(g.Cells))
	for i, row := range g.Cells {
		cells[i] = make([]string, len(row))
		copy(cells[i], row)
	}
	merges := make([]MergeRange, len(g.Merges))
	copy(merges, g.Merges)
	return &RawGrid{Cells: cells, Merges: merges}
}

// HeaderAt returns the trimmed header names taken from the given row.
func (g *RawGrid) HeaderAt(row int) []string {
	src := g.Row(row)
	headers := make([]string, len(src))
	for i, h := range src {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// DataRows returns the rows following the chosen header row.
func (g *RawGrid) DataRows(headerRow int) [][]string {
	if headerRow < 0 || headerRow+1 >= len(g.Cells) {
		return nil
	}
	return g.Cells[headerRow+1:]
}
