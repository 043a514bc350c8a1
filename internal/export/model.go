// Package export renders an aggregation snapshot into the star-schema
// export model and writes it out as CSV files, a JSON document or an
// xlsx workbook. The model is a pure projection of the snapshot; all
// numbers were computed upstream and the writers only format them.
package export

import (
	"spendscope/pkg/contracts/domain"
)

// Table is one export table: a header row plus string records, ready
// for any of the writers.
type Table struct {
	Name    string
	Headers []string
	Records [][]string
}

// Model is the full star-schema export: the fact table, the four
// dimension tables, the KPI cube and the data-quality table.
type Model struct {
	Facts      Table
	Suppliers  Table
	Categories Table
	OrgUnits   Table
	Months     Table
	Cube       Table
	Quality    Table
}

// Tables returns the model's tables in a stable writing order.
func (m *Model) Tables() []Table {
	return []Table{m.Facts, m.Suppliers, m.Categories, m.OrgUnits, m.Months, m.Cube, m.Quality}
}

// BuildModel projects a snapshot and its fact transactions into the
// export model.
func BuildModel(snapshot *domain.AggregateSnapshot, transactions []domain.Transaction) *Model {
	return &Model{
		Facts:      buildFactTable(transactions),
		Suppliers:  buildSupplierTable(snapshot.Suppliers),
		Categories: buildCategoryTable(snapshot.Categories),
		OrgUnits:   buildOrgTable(snapshot.OrgUnits),
		Months:     buildMonthTable(snapshot.Months),
		Cube:       buildCubeTable(snapshot.Cube),
		Quality:    buildQualityTable(snapshot.Quality),
	}
}

func buildFactTable(transactions []domain.Transaction) Table {
	t := Table{
		Name: "transactions",
		Headers: []string{
			"index", "supplier", "amount", "currency", "date", "year_month",
			"fiscal_year", "fiscal_period", "category_l1", "category_l2",
			"category_l3", "org_unit", "description", "invoice_ref",
			"contract_ref", "abc_class", "maverick", "tail_spend",
		},
	}
	t.Records = make([][]string, 0, len(transactions))
	for _, tx := range transactions {
		date := ""
		if tx.HasDate {
			date = tx.Date.Format("2006-01-02")
		}
		t.Records = append(t.Records, []string{
			formatInt(tx.Index),
			tx.Supplier,
			formatAmount(tx.Amount),
			tx.Currency,
			date,
			tx.YearMonth,
			tx.FiscalYear,
			tx.FiscalPeriod,
			tx.CategoryL1,
			tx.CategoryL2,
			tx.CategoryL3,
			tx.OrgUnit,
			tx.Description,
			tx.InvoiceRef,
			tx.ContractRef,
			string(tx.ABCClass),
			formatBool(tx.Maverick),
			formatBool(tx.TailSpend),
		})
	}
	return t
}

func buildSupplierTable(suppliers []domain.Supplier) Table {
	t := Table{
		Name: "dim_suppliers",
		Headers: []string{
			"supplier", "total_spend", "transaction_count", "average_transaction",
			"spend_share", "abc_class", "maverick_count", "maverick_rate",
			"tail_spend",
		},
	}
	t.Records = make([][]string, 0, len(suppliers))
	for _, s := range suppliers {
		t.Records = append(t.Records, []string{
			s.Name,
			formatAmount(s.TotalSpend),
			formatInt(s.TransactionCount),
			formatAmount(s.AverageTransaction),
			formatRate(s.SpendShare),
			string(s.Class),
			formatInt(s.MaverickCount),
			formatRate(s.MaverickRate),
			formatBool(s.TailSpend),
		})
	}
	return t
}

// buildCategoryTable flattens the category tree depth-first so a child
// row always follows its parent.
func buildCategoryTable(categories []domain.CategoryNode) Table {
	t := Table{
		Name: "dim_categories",
		Headers: []string{
			"category", "level", "total_spend", "transaction_count",
			"supplier_count", "spend_share",
		},
	}
	var walk func(nodes []domain.CategoryNode)
	walk = func(nodes []domain.CategoryNode) {
		for _, node := range nodes {
			t.Records = append(t.Records, []string{
				node.Name,
				formatInt(node.Level),
				formatAmount(node.TotalSpend),
				formatInt(node.TransactionCount),
				formatInt(node.SupplierCount),
				formatRate(node.SpendShare),
			})
			walk(node.Children)
		}
	}
	walk(categories)
	return t
}

func buildOrgTable(orgs []domain.OrgUnit) Table {
	t := Table{
		Name:    "dim_org_units",
		Headers: []string{"org_unit", "total_spend", "transaction_count", "spend_share"},
	}
	t.Records = make([][]string, 0, len(orgs))
	for _, o := range orgs {
		t.Records = append(t.Records, []string{
			o.Name,
			formatAmount(o.TotalSpend),
			formatInt(o.TransactionCount),
			formatRate(o.SpendShare),
		})
	}
	return t
}

func buildMonthTable(months []domain.MonthPoint) Table {
	t := Table{
		Name: "dim_months",
		Headers: []string{
			"month", "total_spend", "transaction_count", "average_transaction",
			"supplier_count",
		},
	}
	t.Records = make([][]string, 0, len(months))
	for _, m := range months {
		t.Records = append(t.Records, []string{
			m.Month,
			formatAmount(m.TotalSpend),
			formatInt(m.TransactionCount),
			formatAmount(m.AverageTransaction),
			formatInt(m.SupplierCount),
		})
	}
	return t
}

func buildCubeTable(cells []domain.KPICell) Table {
	t := Table{
		Name: "kpi_cube",
		Headers: []string{
			"month", "category_l1", "org_unit", "spend", "transaction_count",
			"supplier_count", "maverick_spend", "maverick_pct",
			"under_management_pct", "top3_concentration", "mom_change",
		},
	}
	t.Records = make([][]string, 0, len(cells))
	for _, c := range cells {
		t.Records = append(t.Records, []string{
			c.Month,
			c.CategoryL1,
			c.OrgUnit,
			formatAmount(c.Spend),
			formatInt(c.TransactionCount),
			formatInt(c.SupplierCount),
			formatAmount(c.MaverickSpend),
			formatRate(c.MaverickPct),
			formatRate(c.UnderManagementPct),
			formatRate(c.Top3Concentration),
			formatRate(c.MoMChange),
		})
	}
	return t
}

func buildQualityTable(report domain.QualityReport) Table {
	t := Table{
		Name:    "data_quality",
		Headers: []string{"field", "filled_count", "total_count", "fill_rate", "status"},
	}
	t.Records = make([][]string, 0, len(report.Fields))
	for _, f := range report.Fields {
		t.Records = append(t.Records, []string{
			f.Field,
			formatInt(f.FilledCount),
			formatInt(f.TotalCount),
			formatRate(f.FillRate),
			string(f.Status),
		})
	}
	return t
}
