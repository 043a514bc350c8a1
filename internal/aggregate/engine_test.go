package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendscope/internal/mapping"
	"spendscope/pkg/contracts/domain"
)

func testMapping() mapping.FieldMapping {
	return mapping.Resolve(map[string]string{
		"supplier":     "Vendor",
		"amount":       "Amount",
		"date":         "Date",
		"category_l1":  "Category",
		"org_unit":     "Department",
		"contract_ref": "Contract",
	})
}

func factRow(vendor string, amount float64, date time.Time, category, dept, contract string) domain.Row {
	row := domain.Row{
		"Vendor":   domain.TextValue(vendor),
		"Amount":   domain.NumberValue(amount),
		"Date":     domain.DateValue(date),
		"Category": domain.TextValue(category),
	}
	if dept != "" {
		row["Department"] = domain.TextValue(dept)
	}
	if contract != "" {
		row["Contract"] = domain.TextValue(contract)
	}
	return row
}

func april(day int) time.Time {
	return time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)
}

func TestEngineABCBoundary(t *testing.T) {
	rows := []domain.Row{
		factRow("Alpha", 700, april(1), "IT", "Ops", "C-1"),
		factRow("Beta", 200, april(2), "IT", "Ops", "C-2"),
		factRow("Gamma", 100, april(3), "IT", "Ops", "C-3"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{ReportingCurrency: "USD"})
	require.Len(t, res.Snapshot.Suppliers, 3)

	// 700/1000 cumulative lands exactly on the A boundary, 900/1000 on B.
	assert.Equal(t, "Alpha", res.Snapshot.Suppliers[0].Name)
	assert.Equal(t, domain.ClassA, res.Snapshot.Suppliers[0].Class)
	assert.Equal(t, domain.ClassB, res.Snapshot.Suppliers[1].Class)
	assert.Equal(t, domain.ClassC, res.Snapshot.Suppliers[2].Class)
}

func TestEngineABCClassesAreContiguous(t *testing.T) {
	amounts := []float64{520, 13, 480, 77, 1200, 3, 950, 45, 210, 600}
	rows := make([]domain.Row, 0, len(amounts))
	for i, amt := range amounts {
		rows = append(rows, factRow(string(rune('A'+i)), amt, april(i+1), "IT", "", "C-1"))
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})

	order := map[domain.ABCClass]int{domain.ClassA: 0, domain.ClassB: 1, domain.ClassC: 2}
	prev := 0
	for _, s := range res.Snapshot.Suppliers {
		rank := order[s.Class]
		assert.GreaterOrEqual(t, rank, prev, "classes must not regress along the spend-sorted walk")
		prev = rank
	}
}

func TestEngineSumInvariants(t *testing.T) {
	rows := []domain.Row{
		factRow("Alpha", 120.50, april(1), "IT", "Ops", "C-1"),
		factRow("Beta", 79.25, april(2), "Facilities", "Ops", ""),
		factRow("Alpha", 300, april(15), "IT", "Finance", "C-1"),
		factRow("Gamma", 18.99, april(20), "Travel", "Finance", "none"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})
	snap := res.Snapshot

	want := 120.50 + 79.25 + 300 + 18.99
	assert.InDelta(t, want, snap.TotalSpend, 1e-9)
	assert.Equal(t, 4, snap.TransactionCount)
	assert.InDelta(t, want/4, snap.AverageTransaction, 1e-9)

	var supplierSum, categorySum, orgSum, monthSum float64
	for _, s := range snap.Suppliers {
		supplierSum += s.TotalSpend
	}
	for _, c := range snap.Categories {
		categorySum += c.TotalSpend
	}
	for _, o := range snap.OrgUnits {
		orgSum += o.TotalSpend
	}
	for _, m := range snap.Months {
		monthSum += m.TotalSpend
	}
	assert.InDelta(t, want, supplierSum, 1e-9)
	assert.InDelta(t, want, categorySum, 1e-9)
	assert.InDelta(t, want, orgSum, 1e-9)
	assert.InDelta(t, want, monthSum, 1e-9)

	assert.Equal(t, "2024-04-01", snap.PeriodStart)
	assert.Equal(t, "2024-04-20", snap.PeriodEnd)
}

func TestEngineSuppliersSortedBySpend(t *testing.T) {
	rows := []domain.Row{
		factRow("Small", 10, april(1), "IT", "", "C-1"),
		factRow("Big", 900, april(2), "IT", "", "C-1"),
		factRow("Mid", 90, april(3), "IT", "", "C-1"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})

	names := []string{}
	for _, s := range res.Snapshot.Suppliers {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Big", "Mid", "Small"}, names)
}

func TestEngineMaverick(t *testing.T) {
	rows := []domain.Row{
		factRow("Alpha", 100, april(1), "IT", "", "C-1"),
		factRow("Alpha", 100, april(2), "IT", "", ""),
		factRow("Alpha", 100, april(3), "IT", "", "none"),
		factRow("Alpha", 100, april(4), "IT", "", "N/A"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})
	require.Len(t, res.Snapshot.Suppliers, 1)

	s := res.Snapshot.Suppliers[0]
	assert.Equal(t, 3, s.MaverickCount)
	assert.InDelta(t, 0.75, s.MaverickRate, 1e-9)
}

func TestEngineTailSpend(t *testing.T) {
	// Average transaction is (10000+10000+30)/3 ≈ 6676.67; the 5%
	// ceiling is ≈333.83, so only Tiny's 30 total is tail spend.
	rows := []domain.Row{
		factRow("Huge", 10000, april(1), "IT", "", "C-1"),
		factRow("Huge", 10000, april(2), "IT", "", "C-1"),
		factRow("Tiny", 30, april(3), "IT", "", "C-2"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})

	byName := map[string]domain.Supplier{}
	for _, s := range res.Snapshot.Suppliers {
		byName[s.Name] = s
	}
	assert.False(t, byName["Huge"].TailSpend)
	assert.True(t, byName["Tiny"].TailSpend)
}

func TestEngineClassificationsOnTransactions(t *testing.T) {
	rows := []domain.Row{
		factRow("Alpha", 700, april(1), "IT", "", "C-1"),
		factRow("Beta", 200, april(2), "IT", "", "C-2"),
		factRow("Gamma", 100, april(3), "IT", "", "C-3"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})
	require.Len(t, res.Transactions, 3)

	assert.Equal(t, domain.ClassA, res.Transactions[0].ABCClass)
	assert.Equal(t, domain.ClassB, res.Transactions[1].ABCClass)
	assert.Equal(t, domain.ClassC, res.Transactions[2].ABCClass)
	assert.Equal(t, "FY2025", res.Transactions[0].FiscalYear)
	assert.Equal(t, "P01", res.Transactions[0].FiscalPeriod)
}

func TestEngineZeroOptionsFiscalDefaultIsApril(t *testing.T) {
	rows := []domain.Row{factRow("Alpha", 100, april(1), "IT", "", "C-1")}

	res := NewEngine(Options{}, nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})
	require.Len(t, res.Transactions, 1)

	assert.Equal(t, "FY2025", res.Transactions[0].FiscalYear)
	assert.Equal(t, "P01", res.Transactions[0].FiscalPeriod)
}

func TestEngineEmptySupplierAndCategoryFallbacks(t *testing.T) {
	rows := []domain.Row{
		factRow("", 50, april(1), "", "", ""),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})
	require.Len(t, res.Snapshot.Suppliers, 1)
	require.Len(t, res.Snapshot.Categories, 1)

	assert.Equal(t, UnknownSupplier, res.Snapshot.Suppliers[0].Name)
	assert.Equal(t, UncategorizedL1, res.Snapshot.Categories[0].Name)
}

func TestEngineZeroRows(t *testing.T) {
	res := NewEngine(DefaultOptions(), nil).Aggregate(nil, testMapping(), domain.CurrencyStats{ReportingCurrency: "USD"})
	snap := res.Snapshot

	assert.Zero(t, snap.TotalSpend)
	assert.Zero(t, snap.TransactionCount)
	assert.Zero(t, snap.AverageTransaction)
	assert.Empty(t, snap.Suppliers)
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.Months)
	assert.Empty(t, snap.Cube)
	assert.Empty(t, snap.PeriodStart)
	assert.Equal(t, "USD", snap.Currency.ReportingCurrency)
}

func TestEngineZeroTotalSpend(t *testing.T) {
	rows := []domain.Row{
		factRow("Alpha", 0, april(1), "IT", "Ops", "C-1"),
		factRow("Beta", 0, april(2), "IT", "Ops", "C-2"),
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})
	snap := res.Snapshot

	assert.Zero(t, snap.TotalSpend)
	for _, s := range snap.Suppliers {
		assert.Zero(t, s.SpendShare)
		assert.False(t, s.TailSpend, "zero-spend suppliers are never tail")
	}
	for _, c := range snap.Categories {
		assert.Zero(t, c.SpendShare)
	}
}

func TestEngineCategoryTreeLevels(t *testing.T) {
	fm := mapping.Resolve(map[string]string{
		"supplier":    "Vendor",
		"amount":      "Amount",
		"category_l1": "Category",
		"category_l2": "Subcategory",
	})
	rows := []domain.Row{
		{
			"Vendor":      domain.TextValue("Alpha"),
			"Amount":      domain.NumberValue(100),
			"Category":    domain.TextValue("IT"),
			"Subcategory": domain.TextValue("Hardware"),
		},
		{
			"Vendor":      domain.TextValue("Beta"),
			"Amount":      domain.NumberValue(60),
			"Category":    domain.TextValue("IT"),
			"Subcategory": domain.TextValue("Software"),
		},
		{
			"Vendor":   domain.TextValue("Gamma"),
			"Amount":   domain.NumberValue(40),
			"Category": domain.TextValue("IT"),
		},
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, fm, domain.CurrencyStats{})
	require.Len(t, res.Snapshot.Categories, 1)

	it := res.Snapshot.Categories[0]
	assert.Equal(t, "IT", it.Name)
	assert.InDelta(t, 200.0, it.TotalSpend, 1e-9)
	require.Len(t, it.Children, 3, "hardware, software, and the L1-inherited bucket")

	var childSum float64
	for _, child := range it.Children {
		assert.Equal(t, 2, child.Level)
		childSum += child.TotalSpend
	}
	assert.InDelta(t, it.TotalSpend, childSum, 1e-9, "child spend sums to the parent")
	assert.Equal(t, "Hardware", it.Children[0].Name)
}

func TestEngineNoOrgColumnYieldsPlaceholderUnit(t *testing.T) {
	fm := mapping.Resolve(map[string]string{
		"supplier": "Vendor",
		"amount":   "Amount",
	})
	rows := []domain.Row{
		{"Vendor": domain.TextValue("Alpha"), "Amount": domain.NumberValue(10)},
		{"Vendor": domain.TextValue("Beta"), "Amount": domain.NumberValue(30)},
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, fm, domain.CurrencyStats{})

	require.Len(t, res.Snapshot.OrgUnits, 1)
	placeholder := res.Snapshot.OrgUnits[0]
	assert.Equal(t, UnassignedOrg, placeholder.Name)
	assert.InDelta(t, 40, placeholder.TotalSpend, 1e-9)
	assert.Equal(t, 2, placeholder.TransactionCount)
	assert.InDelta(t, 1.0, placeholder.SpendShare, 1e-9)
	for _, tx := range res.Transactions {
		assert.Equal(t, UnassignedOrg, tx.OrgUnit)
	}
}

func TestEngineUndatedRowsStayOutOfMonths(t *testing.T) {
	rows := []domain.Row{
		factRow("Alpha", 100, april(1), "IT", "", "C-1"),
		{
			"Vendor":   domain.TextValue("Beta"),
			"Amount":   domain.NumberValue(50),
			"Category": domain.TextValue("IT"),
		},
	}

	res := NewEngine(DefaultOptions(), nil).Aggregate(rows, testMapping(), domain.CurrencyStats{})

	assert.Equal(t, 2, res.Snapshot.TransactionCount)
	require.Len(t, res.Snapshot.Months, 1)
	assert.Equal(t, "2024-04", res.Snapshot.Months[0].Month)
	assert.InDelta(t, 100.0, res.Snapshot.Months[0].TotalSpend, 1e-9)
}
