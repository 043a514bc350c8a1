package domain

import "time"

// Transaction is one fact row of the star schema: a canonical row
// projected onto its resolved semantic fields with the classification
// attributes attached during aggregation.
type Transaction struct {
	Index        int       `json:"index"`
	Supplier     string    `json:"supplier"`
	CategoryL1   string    `json:"category_l1"`
	CategoryL2   string    `json:"category_l2,omitempty"`
	CategoryL3   string    `json:"category_l3,omitempty"`
	OrgUnit      string    `json:"org_unit,omitempty"`
	Description  string    `json:"description,omitempty"`
	InvoiceRef   string    `json:"invoice_ref,omitempty"`
	ContractRef  string    `json:"contract_ref,omitempty"`
	Date         time.Time `json:"date,omitempty"`
	HasDate      bool      `json:"has_date"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	YearMonth    string    `json:"year_month,omitempty"`
	FiscalYear   string    `json:"fiscal_year,omitempty"`
	FiscalPeriod string    `json:"fiscal_period,omitempty"`
	ABCClass     ABCClass  `json:"abc_class,omitempty"`
	Maverick     bool      `json:"maverick"`
	TailSpend    bool      `json:"tail_spend"`
}
