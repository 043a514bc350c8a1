package grid

import "strings"

// DefaultScanRows is how many leading rows the detector scores.
const DefaultScanRows = 15

// DefaultHeaderKeywords is the vocabulary scored against candidate
// header rows. Matching is lower-cased substring containment per cell.
var DefaultHeaderKeywords = []string{
	"vendor", "supplier", "date", "amount", "value", "currency",
	"category", "invoice", "po", "item", "description", "contract",
	"quantity", "unit", "department",
}

// RowScore is the detector's verdict on a single candidate row.
type RowScore struct {
	Index         int  `json:"index"`
	Score         int  `json:"score"`
	IsEmpty       bool `json:"is_empty"`
	HasMergeStart bool `json:"has_merge_start"`
}

// HeaderReport ranks the leading rows of a grid by header likelihood.
// The recommendation is advisory; the caller makes the final selection.
type HeaderReport struct {
	Rows        []RowScore `json:"rows"`
	Recommended int        `json:"recommended"`
}

// DetectHeader scores the first scanRows rows of the grid against the
// keyword vocabulary. Empty rows are reported but excluded from the
// recommendation; ties go to the first occurrence. With no scoring row
// at all the recommendation falls back to row 0.
func DetectHeader(g *RawGrid, scanRows int, keywords []string) HeaderReport {
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	if len(keywords) == 0 {
		keywords = DefaultHeaderKeywords
	}

	limit := scanRows
	if limit > g.RowCount() {
		limit = g.RowCount()
	}

	report := HeaderReport{Rows: make([]RowScore, 0, limit)}
	best, bestScore := 0, -1

	for i := 0; i < limit; i++ {
		score := RowScore{
			Index:         i,
			IsEmpty:       g.IsRowEmpty(i),
			HasMergeStart: rowStartsMerge(g, i),
		}
		if !score.IsEmpty {
			score.Score = scoreRow(g.Cells[i], keywords)
			if score.Score > bestScore {
				best, bestScore = i, score.Score
			}
		}
		report.Rows = append(report.Rows, score)
	}

	report.Recommended = best
	return report
}

// scoreRow counts cells whose lower-cased trimmed text contains any
// keyword. A cell contributes at most one point no matter how many
// keywords it matches.
func scoreRow(row []string, keywords []string) int {
	score := 0
	for _, cell := range row {
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				score++
				break
			}
		}
	}
	return score
}

func rowStartsMerge(g *RawGrid, row int) bool {
	for _, m := range g.Merges {
		if m.StartRow == row {
			return true
		}
	}
	return false
}
