package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"spendscope/pkg/contracts/domain"
)

// Sheet names of the report workbook, in tab order.
const (
	sheetSummary  = "Executive Summary"
	sheetVendors  = "Spend by Vendor"
	sheetCategory = "Spend by Category"
	sheetTrends   = "Monthly Trends"
	sheetInsights = "Top Insights"
	sheetDetail   = "Detailed Data"
	sheetQuality  = "Data Quality Report"
)

// WorkbookWriter renders the export model into a single xlsx report.
// Styling stays minimal: bold headers, frozen header rows and an
// autofilter on the tabular sheets.
type WorkbookWriter struct {
	headerStyle int
	titleStyle  int
}

// WriteWorkbook writes the full report workbook to path.
func WriteWorkbook(path string, snapshot *domain.AggregateSnapshot, model *Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &WorkbookWriter{}
	var err error
	w.headerStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	w.titleStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}

	if err := w.writeSummary(f, snapshot); err != nil {
		return err
	}
	sheets := []struct {
		name  string
		table Table
	}{
		{sheetVendors, model.Suppliers},
		{sheetCategory, model.Categories},
		{sheetTrends, model.Months},
	}
	for _, s := range sheets {
		if err := w.writeTable(f, s.name, s.table); err != nil {
			return err
		}
	}
	if err := w.writeInsights(f, BuildInsights(snapshot)); err != nil {
		return err
	}
	if err := w.writeTable(f, sheetDetail, model.Facts); err != nil {
		return err
	}
	if err := w.writeQuality(f, snapshot.Quality, model.Quality); err != nil {
		return err
	}

	// Drop the default sheet and land on the summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return fmt.Errorf("failed to locate summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *WorkbookWriter) writeSummary(f *excelize.File, snapshot *domain.AggregateSnapshot) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetSummary, err)
	}

	if err := f.SetCellValue(sheetSummary, "A1", "EXECUTIVE SUMMARY"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "A1", w.titleStyle); err != nil {
		return err
	}

	period := snapshot.PeriodStart
	if snapshot.PeriodEnd != "" && snapshot.PeriodEnd != snapshot.PeriodStart {
		period = snapshot.PeriodStart + " to " + snapshot.PeriodEnd
	}

	metrics := []struct {
		label string
		value interface{}
	}{
		{"Run ID", snapshot.RunID},
		{"Generated At", snapshot.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Spend", snapshot.TotalSpend},
		{"Transactions", snapshot.TransactionCount},
		{"Suppliers", snapshot.SupplierCount},
		{"Categories", snapshot.CategoryCount},
		{"Average Transaction", snapshot.AverageTransaction},
		{"Period", period},
		{"Reporting Currency", snapshot.Currency.ReportingCurrency},
		{"Currency Assumptions Made", snapshot.Currency.AssumptionsMade},
	}
	for i, m := range metrics {
		row := i + 3
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), m.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), m.value); err != nil {
			return err
		}
	}
	last := fmt.Sprintf("A%d", len(metrics)+2)
	return f.SetCellStyle(sheetSummary, "A3", last, w.headerStyle)
}

// writeTable renders one export table onto its own sheet with a bold,
// frozen, filterable header row.
func (w *WorkbookWriter) writeTable(f *excelize.File, sheet string, table Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for r, record := range table.Records {
		for c, value := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if len(table.Headers) == 0 {
		return nil
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(table.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, w.headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.AutoFilter(sheet, "A1:"+lastHeader, nil)
}

func (w *WorkbookWriter) writeInsights(f *excelize.File, insights []Insight) error {
	if _, err := f.NewSheet(sheetInsights); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetInsights, err)
	}

	if err := f.SetCellValue(sheetInsights, "A1", "TOP INSIGHTS"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetInsights, "A1", "A1", w.titleStyle); err != nil {
		return err
	}

	row := 3
	for i, insight := range insights {
		title := fmt.Sprintf("INSIGHT #%d: %s", i+1, insight.Title)
		if err := f.SetCellValue(sheetInsights, fmt.Sprintf("A%d", row), title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetInsights, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), w.headerStyle); err != nil {
			return err
		}
		lines := []string{insight.Finding, insight.Data, insight.Impact, "Action: " + insight.Action}
		for _, line := range lines {
			row++
			if err := f.SetCellValue(sheetInsights, fmt.Sprintf("A%d", row), line); err != nil {
				return err
			}
		}
		row += 2
	}
	return nil
}

func (w *WorkbookWriter) writeQuality(f *excelize.File, report domain.QualityReport, table Table) error {
	if err := w.writeTable(f, sheetQuality, table); err != nil {
		return err
	}
	// Overall score below the table.
	row := len(table.Records) + 3
	if err := f.SetCellValue(sheetQuality, fmt.Sprintf("A%d", row), "Overall Score"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetQuality, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), w.headerStyle); err != nil {
		return err
	}
	return f.SetCellValue(sheetQuality, fmt.Sprintf("B%d", row), formatRate(report.OverallScore))
}
