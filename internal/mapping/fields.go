// Package mapping resolves the source spreadsheet's header names onto
// canonical semantic field identities. Resolution happens exactly once
// per run, producing an immutable table; downstream stages never walk
// fallback chains themselves.
package mapping

// Field is a canonical semantic field id, independent of the source
// spreadsheet's actual header text.
type Field string

const (
	FieldSupplier    Field = "supplier"
	FieldAmount      Field = "amount"
	FieldDate        Field = "date"
	FieldCurrency    Field = "currency"
	FieldCategoryL1  Field = "category_l1"
	FieldCategoryL2  Field = "category_l2"
	FieldCategoryL3  Field = "category_l3"
	FieldOrgUnit     Field = "org_unit"
	FieldContractRef Field = "contract_ref"
	FieldInvoiceRef  Field = "invoice_ref"
	FieldDescription Field = "description"
)

// Fields lists every canonical field in resolution order. The more
// specific category levels come before the generic one so a "Category
// L2" header is claimed by L2 before L1's broad keyword set sees it.
var Fields = []Field{
	FieldSupplier,
	FieldAmount,
	FieldDate,
	FieldCurrency,
	FieldCategoryL3,
	FieldCategoryL2,
	FieldCategoryL1,
	FieldOrgUnit,
	FieldContractRef,
	FieldInvoiceRef,
	FieldDescription,
}

// aliases is the ordered fallback chain per canonical field. The field's
// own id always comes first, which makes resolution idempotent: feeding
// a resolved table back through Resolve reproduces it unchanged.
var aliases = map[Field][]string{
	FieldSupplier:    {"supplier", "vendor"},
	FieldAmount:      {"amount", "invoice_amount", "value", "spend"},
	FieldDate:        {"date", "invoice_date", "posting_date"},
	FieldCurrency:    {"currency"},
	FieldCategoryL1:  {"category_l1", "category"},
	FieldCategoryL2:  {"category_l2", "subcategory"},
	FieldCategoryL3:  {"category_l3"},
	FieldOrgUnit:     {"org_unit", "business_unit", "department", "cost_center"},
	FieldContractRef: {"contract_ref", "contract", "agreement"},
	FieldInvoiceRef:  {"invoice_ref", "invoice_number", "invoice", "po_number"},
	FieldDescription: {"description", "item_description", "item"},
}

// Aliases returns the fallback chain for a field.
func Aliases(f Field) []string {
	return aliases[f]
}
