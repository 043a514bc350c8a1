package mapping

import "strings"

// autoKeywords drives the auto-mapping heuristic: per canonical field, a
// set of normalized substrings tested against each normalized header.
// The first matching header wins per field; conflicts are not arbitrated
// beyond that, except that a header claimed by one field is skipped by
// later, more generic ones.
var autoKeywords = map[Field][]string{
	FieldSupplier:    {"vendor", "supplier"},
	FieldAmount:      {"amount", "val", "sum", "spend"},
	FieldDate:        {"date"},
	FieldCurrency:    {"currency", "ccy"},
	FieldCategoryL3:  {"categoryl3", "category3", "level3"},
	FieldCategoryL2:  {"categoryl2", "category2", "subcategory", "level2"},
	FieldCategoryL1:  {"category", "commodity"},
	FieldOrgUnit:     {"businessunit", "orgunit", "department", "division", "costcenter"},
	FieldContractRef: {"contract", "agreement"},
	FieldInvoiceRef:  {"invoice", "purchaseorder", "ponumber", "pono"},
	FieldDescription: {"description", "desc", "item"},
}

// AutoMap guesses alias-id → source-column assignments from the raw
// header names when no user mapping exists yet. The result feeds
// straight into Resolve. Headers are matched in order, normalized to
// lowercase alphanumerics.
func AutoMap(headers []string) map[string]string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	assignments := make(map[string]string)
	claimed := make(map[int]bool)

	for _, field := range Fields {
		keywords, ok := autoKeywords[field]
		if !ok {
			continue
		}
	scan:
		for i, norm := range normalized {
			if norm == "" || claimed[i] {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(norm, kw) {
					assignments[string(field)] = headers[i]
					claimed[i] = true
					break scan
				}
			}
		}
	}

	return assignments
}

// NormalizeHeader lowercases a header and strips every non-alphanumeric
// rune, so "Invoice Amount (EUR)" and "invoice_amount_eur" compare equal.
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
