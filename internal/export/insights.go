package export

import (
	"fmt"

	"spendscope/pkg/contracts/domain"
)

// Consolidation savings band applied to tail-vendor spend.
const (
	savingsLowFraction  = 0.15
	savingsHighFraction = 0.20
)

// Concentration risk bands for the top-10 supplier share.
const (
	concentrationHigh   = 0.80
	concentrationMedium = 0.50
)

// Insight is one derived finding surfaced on the Top Insights sheet and
// in the JSON document.
type Insight struct {
	Title   string `json:"title"`
	Finding string `json:"finding"`
	Data    string `json:"data"`
	Impact  string `json:"impact"`
	Action  string `json:"action"`
}

// BuildInsights derives the supplier-consolidation and
// vendor-concentration findings from a snapshot. Datasets with no tail
// suppliers simply omit the consolidation finding.
func BuildInsights(snapshot *domain.AggregateSnapshot) []Insight {
	insights := []Insight{}

	if tailCount, tailSpend := tailTotals(snapshot.Suppliers); tailCount > 0 {
		insights = append(insights, Insight{
			Title:   "SUPPLIER CONSOLIDATION",
			Finding: fmt.Sprintf("%d suppliers fall in the tail-spend band", tailCount),
			Data:    fmt.Sprintf("Total tail spend: %s", formatAmount(tailSpend)),
			Impact: fmt.Sprintf("Potential savings: %s - %s (15-20%%)",
				formatAmount(tailSpend*savingsLowFraction),
				formatAmount(tailSpend*savingsHighFraction)),
			Action: "Consolidate to preferred suppliers",
		})
	}

	if snapshot.TotalSpend > 0 && len(snapshot.Suppliers) > 0 {
		share := topNShare(snapshot.Suppliers, 10, snapshot.TotalSpend)
		risk := "Low"
		switch {
		case share > concentrationHigh:
			risk = "High"
		case share > concentrationMedium:
			risk = "Medium"
		}
		insights = append(insights, Insight{
			Title:   "VENDOR CONCENTRATION",
			Finding: fmt.Sprintf("Top 10 suppliers account for %s of total spend", formatPct(share)),
			Data:    fmt.Sprintf("Top 10 spend: %s", formatAmount(share*snapshot.TotalSpend)),
			Impact:  "Risk level: " + risk,
			Action:  "Diversify supply base if concentration is high",
		})
	}

	return insights
}

func tailTotals(suppliers []domain.Supplier) (int, float64) {
	count := 0
	var spend float64
	for _, s := range suppliers {
		if s.TailSpend {
			count++
			spend += s.TotalSpend
		}
	}
	return count, spend
}

// topNShare sums the first n suppliers' spend share; the slice is
// already sorted descending by spend.
func topNShare(suppliers []domain.Supplier, n int, totalSpend float64) float64 {
	if len(suppliers) < n {
		n = len(suppliers)
	}
	var top float64
	for _, s := range suppliers[:n] {
		top += s.TotalSpend
	}
	return top / totalSpend
}
