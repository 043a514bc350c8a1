package domain

import (
	"time"
)

// ABCClass segments suppliers by cumulative spend contribution.
type ABCClass string

const (
	// ClassA covers suppliers inside the top cumulative spend band.
	ClassA ABCClass = "A"
	// ClassB covers the next cumulative band.
	ClassB ABCClass = "B"
	// ClassC covers the remaining tail.
	ClassC ABCClass = "C"
)

// FiscalPeriod is a calendar date mapped onto an organisation-defined
// fiscal calendar, e.g. FY2025 / P01 for April 2024 with an April start.
type FiscalPeriod struct {
	Year   string `json:"fiscal_year"`   // "FY2025"
	Period string `json:"fiscal_period"` // "P01".."P12"
}

// Supplier is a per-supplier rollup. Identity is the trimmed display
// name; no fuzzy deduplication is performed beyond trimming.
type Supplier struct {
	Name               string   `json:"name"`
	TotalSpend         float64  `json:"total_spend"`
	TransactionCount   int      `json:"transaction_count"`
	AverageTransaction float64  `json:"average_transaction"`
	SpendShare         float64  `json:"spend_share"`
	Class              ABCClass `json:"abc_class"`
	MaverickCount      int      `json:"maverick_count"`
	MaverickRate       float64  `json:"maverick_rate"`
	TailSpend          bool     `json:"tail_spend"`
	Categories         []string `json:"categories"`
}

// CategoryNode is a node of the L1→L2(→L3) category tree. Children are
// sorted descending by spend and their spend sums to the parent's.
type CategoryNode struct {
	Name             string         `json:"name"`
	Level            int            `json:"level"`
	TotalSpend       float64        `json:"total_spend"`
	TransactionCount int            `json:"transaction_count"`
	SupplierCount    int            `json:"supplier_count"`
	SpendShare       float64        `json:"spend_share"`
	Children         []CategoryNode `json:"children,omitempty"`
}

// OrgUnit is a business-unit rollup. The dimension is optional: with no
// business-unit column mapped the snapshot carries a single placeholder
// unit instead of failing.
type OrgUnit struct {
	Name             string  `json:"name"`
	TotalSpend       float64 `json:"total_spend"`
	TransactionCount int     `json:"transaction_count"`
	SpendShare       float64 `json:"spend_share"`
}

// MonthPoint is one step of the calendar month series.
type MonthPoint struct {
	Month              string  `json:"month"` // "2024-04"
	TotalSpend         float64 `json:"total_spend"`
	TransactionCount   int     `json:"transaction_count"`
	AverageTransaction float64 `json:"average_transaction"`
	SupplierCount      int     `json:"supplier_count"`
}

// KPICell is one cell of the month × category L1 × org unit cube.
type KPICell struct {
	Month              string  `json:"month"`
	CategoryL1         string  `json:"category_l1"`
	OrgUnit            string  `json:"org_unit"`
	Spend              float64 `json:"spend"`
	TransactionCount   int     `json:"transaction_count"`
	SupplierCount      int     `json:"supplier_count"`
	MaverickSpend      float64 `json:"maverick_spend"`
	MaverickPct        float64 `json:"maverick_pct"`
	UnderManagementPct float64 `json:"under_management_pct"`
	Top3Concentration  float64 `json:"top3_concentration"`
	MoMChange          float64 `json:"mom_change"`
}

// CurrencyStats records how currencies were resolved for a run. When no
// currency could be detected anywhere the reporting default is assumed
// and AssumptionsMade is set rather than failing the run.
type CurrencyStats struct {
	ReportingCurrency string   `json:"reporting_currency"`
	AssumptionsMade   bool     `json:"assumptions_made"`
	RowsConverted     int      `json:"rows_converted"`
	RowsAssumed       int      `json:"rows_assumed"`
	Detected          []string `json:"currencies_detected"`
}

// AggregateSnapshot is the root aggregation output. It is built once per
// run, is immutable afterwards, and is fully re-derivable from the
// canonical rows plus the field mapping.
type AggregateSnapshot struct {
	RunID              string         `json:"run_id"`
	GeneratedAt        time.Time      `json:"generated_at"`
	TotalSpend         float64        `json:"total_spend"`
	TransactionCount   int            `json:"transaction_count"`
	AverageTransaction float64        `json:"average_transaction"`
	SupplierCount      int            `json:"supplier_count"`
	CategoryCount      int            `json:"category_count"`
	PeriodStart        string         `json:"period_start,omitempty"` // "2024-01-03"
	PeriodEnd          string         `json:"period_end,omitempty"`
	Suppliers          []Supplier     `json:"suppliers"`
	Categories         []CategoryNode `json:"categories"`
	OrgUnits           []OrgUnit      `json:"org_units"`
	Months             []MonthPoint   `json:"months"`
	Cube               []KPICell      `json:"kpi_cube"`
	Currency           CurrencyStats  `json:"currency"`
	Quality            QualityReport  `json:"quality"`
}
