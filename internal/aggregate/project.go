package aggregate

import (
	"strings"

	"spendscope/internal/mapping"
	"spendscope/internal/normalize"
	"spendscope/pkg/contracts/domain"
)

// projector caches the normalized source-column keys of a field mapping
// so the per-row projection does no string work beyond map lookups.
type projector struct {
	supplier    string
	amount      string
	date        string
	currency    string
	categoryL1  string
	categoryL2  string
	categoryL3  string
	orgUnit     string
	contractRef string
	invoiceRef  string
	description string

	hasL2 bool
	hasL3 bool

	opts Options
}

func newProjector(fm mapping.FieldMapping, opts Options) *projector {
	key := func(f mapping.Field) string {
		return normalize.NormalizeKey(fm.Column(f))
	}
	// Lower category levels inherit the next-higher column when
	// unmapped; a level only deepens the tree when it has a column of
	// its own.
	l1Col := fm.Column(mapping.FieldCategoryL1)
	l2Col := fm.Column(mapping.FieldCategoryL2)
	l3Col := fm.Column(mapping.FieldCategoryL3)
	return &projector{
		supplier:    key(mapping.FieldSupplier),
		amount:      key(mapping.FieldAmount),
		date:        key(mapping.FieldDate),
		currency:    key(mapping.FieldCurrency),
		categoryL1:  key(mapping.FieldCategoryL1),
		categoryL2:  key(mapping.FieldCategoryL2),
		categoryL3:  key(mapping.FieldCategoryL3),
		orgUnit:     key(mapping.FieldOrgUnit),
		contractRef: key(mapping.FieldContractRef),
		invoiceRef:  key(mapping.FieldInvoiceRef),
		description: key(mapping.FieldDescription),
		hasL2:       fm.HasExplicit(mapping.FieldCategoryL2) && l2Col != l1Col,
		hasL3:       fm.HasExplicit(mapping.FieldCategoryL3) && l3Col != l2Col,
		opts:        opts,
	}
}

// project turns one canonical row into a fact transaction. The category
// fallback chain guarantees a non-empty L1 and lets L2/L3 inherit the
// next-higher level; classification attributes that depend on
// whole-dataset totals (ABC, tail) are attached later by the engine.
func (p *projector) project(index int, row domain.Row) domain.Transaction {
	tx := domain.Transaction{
		Index:       index,
		Supplier:    strings.TrimSpace(row.Get(p.supplier).AsString()),
		Amount:      row.Get(p.amount).AsFloat(),
		Currency:    row.Get(p.currency).AsString(),
		OrgUnit:     orgName(row.Get(p.orgUnit).AsString()),
		ContractRef: strings.TrimSpace(row.Get(p.contractRef).AsString()),
		InvoiceRef:  strings.TrimSpace(row.Get(p.invoiceRef).AsString()),
		Description: strings.TrimSpace(row.Get(p.description).AsString()),
	}

	l1 := strings.TrimSpace(row.Get(p.categoryL1).AsString())
	if l1 == "" {
		l1 = UncategorizedL1
	}
	tx.CategoryL1 = l1

	l2 := strings.TrimSpace(row.Get(p.categoryL2).AsString())
	if l2 == "" {
		l2 = l1
	}
	tx.CategoryL2 = l2

	l3 := strings.TrimSpace(row.Get(p.categoryL3).AsString())
	if l3 == "" {
		l3 = l2
	}
	tx.CategoryL3 = l3

	if date, ok := row.Get(p.date).AsDate(); ok {
		tx.Date = date
		tx.HasDate = true
		tx.YearMonth = date.Format("2006-01")
		fp := FiscalPeriodFor(date, *p.opts.FiscalYearStartMonth)
		tx.FiscalYear = fp.Year
		tx.FiscalPeriod = fp.Period
	}

	tx.Maverick = p.opts.IsMaverick(tx.ContractRef)

	return tx
}

// orgName defaults empty business-unit cells to the placeholder so the
// org dimension always renders, mapped column or not.
func orgName(raw string) string {
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}
	return UnassignedOrg
}
