// Package aggregate folds canonical transaction rows into the
// star-schema rollups: supplier, category, organization and date
// dimensions, ABC / maverick / tail-spend classification, fiscal
// periods and the month × category × org KPI cube. The fold keeps its
// accumulators mutable internally; only finalized, immutable structures
// leave the package.
package aggregate

import "strings"

// Default classification parameters. The tail-spend threshold compares
// a supplier's total against a fraction of the average transaction
// value.
const (
	DefaultFiscalYearStartMonth = 3 // April, zero-based month index
	DefaultTailSpendMultiplier  = 0.05
	DefaultABCThresholdA        = 0.70
	DefaultABCThresholdB        = 0.90
)

// UncategorizedL1 labels rows whose category cell is empty; the L1
// dimension never carries an empty name.
const UncategorizedL1 = "Uncategorized"

// ABCThresholds are the cumulative spend-fraction boundaries of the
// A and B classes; everything beyond B is C.
type ABCThresholds struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Options configures an aggregation run.
type Options struct {
	// FiscalYearStartMonth is the zero-based month the fiscal year
	// starts in (0 = January, 3 = April). Nil selects the April
	// default; the pointer keeps "unset" distinguishable from an
	// explicit January start.
	FiscalYearStartMonth *int `json:"fiscal_year_start_month,omitempty" validate:"omitempty,min=0,max=11"`

	// TailSpendMultiplier scales the average transaction value into
	// the tail-spend ceiling.
	TailSpendMultiplier float64 `json:"tail_spend_multiplier" validate:"gt=0"`

	ABCThresholds ABCThresholds `json:"abc_thresholds"`

	// MaverickValues are the contract-reference cell contents treated
	// as "no contract", compared case-insensitively. The empty string
	// is always maverick. Kept configurable: the empty-reference proxy
	// is a business-policy heuristic, not a validated rule.
	MaverickValues []string `json:"maverick_values"`
}

// FiscalStart returns a pointer to a zero-based fiscal start month,
// for building Options literals.
func FiscalStart(month int) *int {
	return &month
}

// DefaultOptions returns the documented defaults: April fiscal start,
// 5% tail multiplier, 70/90 ABC boundaries, none/n-a maverick markers.
func DefaultOptions() Options {
	return Options{
		FiscalYearStartMonth: FiscalStart(DefaultFiscalYearStartMonth),
		TailSpendMultiplier:  DefaultTailSpendMultiplier,
		ABCThresholds:        ABCThresholds{A: DefaultABCThresholdA, B: DefaultABCThresholdB},
		MaverickValues:       []string{"none", "n/a"},
	}
}

// normalized fills zero values with defaults so a partially built
// Options literal still behaves.
func (o Options) normalized() Options {
	if o.FiscalYearStartMonth == nil || *o.FiscalYearStartMonth < 0 || *o.FiscalYearStartMonth > 11 {
		o.FiscalYearStartMonth = FiscalStart(DefaultFiscalYearStartMonth)
	}
	if o.TailSpendMultiplier <= 0 {
		o.TailSpendMultiplier = DefaultTailSpendMultiplier
	}
	if o.ABCThresholds.A <= 0 {
		o.ABCThresholds.A = DefaultABCThresholdA
	}
	if o.ABCThresholds.B <= 0 || o.ABCThresholds.B < o.ABCThresholds.A {
		o.ABCThresholds.B = DefaultABCThresholdB
	}
	if o.MaverickValues == nil {
		o.MaverickValues = []string{"none", "n/a"}
	}
	return o
}

// IsMaverick applies the maverick predicate to a contract reference.
func (o Options) IsMaverick(contractRef string) bool {
	ref := strings.TrimSpace(contractRef)
	if ref == "" {
		return true
	}
	for _, marker := range o.MaverickValues {
		if strings.EqualFold(ref, marker) {
			return true
		}
	}
	return false
}
