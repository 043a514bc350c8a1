package grid

import "strings"

// ResolveMerges returns a new grid of the same dimensions in which every
// empty cell inside a merge range carries a copy of its anchor (top-left)
// value. Non-empty cells are never overwritten. This must run before the
// header row is interpreted, because downstream code addresses cells by
// position relative to that row.
func ResolveMerges(g *RawGrid) *RawGrid {
	out := g.Clone()
	for _, m := range out.Merges {
		anchor := out.Cell(m.StartRow, m.StartCol)
		if strings.TrimSpace(anchor) == "" {
			continue
		}
		for row := m.StartRow; row <= m.EndRow; row++ {
			for col := m.StartCol; col <= m.EndCol; col++ {
				if row == m.StartRow && col == m.StartCol {
					continue
				}
				setCell(out, row, col, anchor)
			}
		}
	}
	return out
}

// setCell writes a value at the coordinate if the cell is currently
// empty, growing the ragged row when the merge extends past its end.
func setCell(g *RawGrid, row, col int, value string) {
	if row < 0 || row >= len(g.Cells) {
		return
	}
	for col >= len(g.Cells[row]) {
		g.Cells[row] = append(g.Cells[row], "")
	}
	if strings.TrimSpace(g.Cells[row][col]) == "" {
		g.Cells[row][col] = value
	}
}
