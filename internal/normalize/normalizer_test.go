package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendscope/internal/grid"
	"spendscope/internal/mapping"
	"spendscope/pkg/contracts/domain"
)

func testMapping() mapping.FieldMapping {
	return mapping.Resolve(map[string]string{
		"vendor":      "Vendor",
		"date":        "Date",
		"amount":      "Amount",
		"description": "Description",
	})
}

func TestNormalizerStitching(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Description", "Amount", "Note"},
		{"A", "Widget", "100", ""},
		{"", "Bolt", "20", ""},
		{"", "", "", "footer text"},
	}}

	n := New(Config{
		Mapping: mapping.Resolve(map[string]string{
			"vendor":      "Vendor",
			"amount":      "Amount",
			"description": "Description",
		}),
		StickyColumns: []string{"Vendor"},
		MarkerColumns: []string{"Description", "Amount"},
	}, nil)

	result := n.Run(g, 0)
	require.Len(t, result.Rows, 3)

	// Row with a marker inherits the last-seen vendor.
	assert.Equal(t, "A", result.Rows[0].Get("Vendor").AsString())
	assert.Equal(t, "A", result.Rows[1].Get("Vendor").AsString())

	// Row without marker signal is left unstitched.
	assert.True(t, result.Rows[2].Get("Vendor").IsEmpty())
}

func TestNormalizerStitchWithoutMarkersConfigured(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Amount"},
		{"A", "10"},
		{"", "20"},
	}}

	n := New(Config{
		Mapping:       testMapping(),
		StickyColumns: []string{"Vendor"},
		MarkerColumns: []string{}, // explicitly none: always fill
	}, nil)

	result := n.Run(g, 0)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "A", result.Rows[1].Get("Vendor").AsString())
}

func TestNormalizerNoiseFiltering(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Description", "Amount"},
		{"A", "Widget", "100"},
		{"", "", ""},
		{"Grand Total", "", "120"},
		{"B", "Subtotal row", "20"},
	}}

	n := New(Config{Mapping: testMapping()}, nil)
	result := n.Run(g, 0)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "A", result.Rows[0].Get("Vendor").AsString())
	assert.Equal(t, 1, result.BlankRows)
	assert.Equal(t, 2, result.NoiseRows)
}

func TestNormalizerCurrencyDefault(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Amount"},
		{"A", "100"},
		{"B", "250"},
	}}

	n := New(Config{Mapping: testMapping(), ReportingCurrency: "USD"}, nil)
	result := n.Run(g, 0)

	assert.True(t, result.Currency.AssumptionsMade)
	assert.Equal(t, 0, result.Currency.RowsConverted)
	assert.Equal(t, 2, result.Currency.RowsAssumed)
	assert.Equal(t, []string{"USD"}, result.Currency.Detected)
}

func TestNormalizerCurrencyConversion(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Amount", "Currency"},
		{"A", "100", "EUR"},
		{"B", "$50", ""},
		{"C", "10", ""},
	}}

	n := New(Config{
		Mapping: mapping.Resolve(map[string]string{
			"vendor":   "Vendor",
			"amount":   "Amount",
			"currency": "Currency",
		}),
		ReportingCurrency: "USD",
		ExchangeRates:     map[string]float64{"USD": 1.0, "EUR": 1.10},
	}, nil)

	result := n.Run(g, 0)
	require.Len(t, result.Rows, 3)

	assert.InDelta(t, 110.0, result.Rows[0].Get("Amount").AsFloat(), 1e-9)
	assert.InDelta(t, 50.0, result.Rows[1].Get("Amount").AsFloat(), 1e-9)
	assert.InDelta(t, 10.0, result.Rows[2].Get("Amount").AsFloat(), 1e-9)

	assert.Equal(t, 2, result.Currency.RowsConverted)
	assert.Equal(t, 1, result.Currency.RowsAssumed)
	assert.True(t, result.Currency.AssumptionsMade)
	assert.Equal(t, []string{"EUR", "USD"}, result.Currency.Detected)

	assert.Equal(t, "EUR", result.Rows[0].Get("Currency").AsString())
	assert.Equal(t, "USD", result.Rows[1].Get("Currency").AsString())
}

func TestNormalizerKeyNormalization(t *testing.T) {
	// Headers damaged by merge fills still match the mapping after
	// whitespace collapse.
	g := &grid.RawGrid{Cells: [][]string{
		{" Vendor   Name ", "Amount"},
		{"Acme", "10"},
	}}

	n := New(Config{
		Mapping: mapping.Resolve(map[string]string{
			"vendor": "Vendor Name",
			"amount": "Amount",
		}),
	}, nil)

	result := n.Run(g, 0)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Acme", result.Rows[0].Get("Vendor Name").AsString())
}

func TestNormalizerDateParsing(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Date", "Amount"},
		{"A", "2024-04-01", "10"},
		{"B", "45383", "20"},
		{"C", "garbage", "30"},
	}}

	n := New(Config{Mapping: testMapping()}, nil)
	result := n.Run(g, 0)
	require.Len(t, result.Rows, 3)

	want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	d0, ok := result.Rows[0].Get("Date").AsDate()
	require.True(t, ok)
	assert.Equal(t, want, d0)

	d1, ok := result.Rows[1].Get("Date").AsDate()
	require.True(t, ok)
	assert.Equal(t, want, d1)

	// Unparseable dates degrade to empty, never abort the row.
	assert.True(t, result.Rows[2].Get("Date").IsEmpty())
}

func TestNormalizerZeroRows(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{{"Vendor", "Amount"}}}

	n := New(Config{Mapping: testMapping()}, nil)
	result := n.Run(g, 0)

	assert.Empty(t, result.Rows)
	assert.False(t, result.Currency.AssumptionsMade)
	assert.Empty(t, result.Currency.Detected)
}

func TestNormalizerBadAmountDegrades(t *testing.T) {
	g := &grid.RawGrid{Cells: [][]string{
		{"Vendor", "Amount"},
		{"A", "not-a-number"},
	}}

	n := New(Config{Mapping: testMapping()}, nil)
	result := n.Run(g, 0)

	require.Len(t, result.Rows, 1)
	v := result.Rows[0].Get("Amount")
	assert.Equal(t, domain.KindEmpty, v.Kind)
	assert.Equal(t, 0.0, v.AsFloat())
}
