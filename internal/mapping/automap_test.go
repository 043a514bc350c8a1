package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Invoice Amount (EUR)", "invoiceamounteur"},
		{"  Vendor_Name ", "vendorname"},
		{"PO #", "po"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in))
	}
}

func TestAutoMap(t *testing.T) {
	t.Run("maps common procurement headers", func(t *testing.T) {
		headers := []string{
			"Vendor Name", "Invoice Date", "Invoice Amount", "Currency",
			"Category", "Business Unit", "Contract Ref", "Invoice Number",
			"Item Description",
		}

		m := Resolve(AutoMap(headers))

		assert.Equal(t, "Vendor Name", m.Column(FieldSupplier))
		assert.Equal(t, "Invoice Date", m.Column(FieldDate))
		assert.Equal(t, "Invoice Amount", m.Column(FieldAmount))
		assert.Equal(t, "Currency", m.Column(FieldCurrency))
		assert.Equal(t, "Category", m.Column(FieldCategoryL1))
		assert.Equal(t, "Business Unit", m.Column(FieldOrgUnit))
		assert.Equal(t, "Contract Ref", m.Column(FieldContractRef))
		assert.Equal(t, "Invoice Number", m.Column(FieldInvoiceRef))
		assert.Equal(t, "Item Description", m.Column(FieldDescription))
	})

	t.Run("first matching header wins per field", func(t *testing.T) {
		assignments := AutoMap([]string{"Gross Amount", "Net Amount"})
		assert.Equal(t, "Gross Amount", assignments["amount"])
	})

	t.Run("specific category level claims its header before L1", func(t *testing.T) {
		m := Resolve(AutoMap([]string{"Category", "Category L2"}))

		assert.Equal(t, "Category", m.Column(FieldCategoryL1))
		assert.Equal(t, "Category L2", m.Column(FieldCategoryL2))
	})

	t.Run("unmapped currency leaves the table total", func(t *testing.T) {
		m := Resolve(AutoMap([]string{"Vendor", "Amount", "Date"}))

		assert.False(t, m.HasExplicit(FieldCurrency))
		assert.Equal(t, "currency", m.Column(FieldCurrency))
	})

	t.Run("empty headers produce no assignments", func(t *testing.T) {
		assert.Empty(t, AutoMap(nil))
		assert.Empty(t, AutoMap([]string{"", "  "}))
	})
}
