package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendscope/pkg/contracts/domain"
)

func TestBuildInsights(t *testing.T) {
	snapshot := sampleSnapshot()

	insights := BuildInsights(snapshot)
	require.Len(t, insights, 2)

	consolidation := insights[0]
	assert.Equal(t, "SUPPLIER CONSOLIDATION", consolidation.Title)
	assert.Contains(t, consolidation.Finding, "1 suppliers")
	assert.Contains(t, consolidation.Data, "100.00")

	concentration := insights[1]
	assert.Equal(t, "VENDOR CONCENTRATION", concentration.Title)
	assert.Contains(t, concentration.Finding, "100.0%")
	assert.Contains(t, concentration.Impact, "High")
}

func TestBuildInsightsConcentrationBands(t *testing.T) {
	tests := []struct {
		name     string
		topSpend float64
		total    float64
		want     string
	}{
		{"high above 80 percent", 900, 1000, "High"},
		{"medium above 50 percent", 600, 1000, "Medium"},
		{"low otherwise", 300, 1000, "Low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Ten head suppliers fill the top-10 window with exactly
			// topSpend; ten more carry the remainder.
			snapshot := &domain.AggregateSnapshot{TotalSpend: tt.total}
			rest := tt.total - tt.topSpend
			for i := 0; i < 10; i++ {
				snapshot.Suppliers = append(snapshot.Suppliers, domain.Supplier{
					Name:       string(rune('A' + i)),
					TotalSpend: tt.topSpend / 10,
				})
			}
			for i := 0; i < 10; i++ {
				snapshot.Suppliers = append(snapshot.Suppliers, domain.Supplier{
					Name:       string(rune('a' + i)),
					TotalSpend: rest / 10,
				})
			}

			insights := BuildInsights(snapshot)
			require.NotEmpty(t, insights)
			last := insights[len(insights)-1]
			require.Equal(t, "VENDOR CONCENTRATION", last.Title)
			assert.Contains(t, last.Impact, tt.want)
		})
	}
}

func TestBuildInsightsEmptySnapshot(t *testing.T) {
	insights := BuildInsights(&domain.AggregateSnapshot{})
	assert.Empty(t, insights, "no spend means no findings, not a panic")
}
