package aggregate

import (
	"spendscope/internal/mapping"
	"spendscope/internal/normalize"
	"spendscope/pkg/contracts/domain"
)

// qualityFields is the reporting order of the completeness table, most
// load-bearing fields first.
var qualityFields = []mapping.Field{
	mapping.FieldSupplier,
	mapping.FieldAmount,
	mapping.FieldDate,
	mapping.FieldCurrency,
	mapping.FieldCategoryL1,
	mapping.FieldCategoryL2,
	mapping.FieldCategoryL3,
	mapping.FieldOrgUnit,
	mapping.FieldContractRef,
	mapping.FieldInvoiceRef,
	mapping.FieldDescription,
}

// buildQuality measures per-field completeness over the canonical rows.
// Only fields backed by an actual source column are reported; a field
// the mapping never resolved would always read 0% and says nothing
// about the data itself. The overall score is the mean fill rate of the
// reported fields.
func buildQuality(rows []domain.Row, fm mapping.FieldMapping) domain.QualityReport {
	report := domain.QualityReport{Fields: []domain.FieldQuality{}}

	var rateSum float64
	seen := make(map[string]bool)
	for _, field := range qualityFields {
		if !fm.HasExplicit(field) {
			continue
		}
		key := normalize.NormalizeKey(fm.Column(field))
		// Inherited category levels share a higher level's column;
		// report each source column once.
		if seen[key] {
			continue
		}
		seen[key] = true

		filled := 0
		for _, row := range rows {
			if !row.Get(key).IsEmpty() {
				filled++
			}
		}

		fq := domain.FieldQuality{
			Field:       string(field),
			FilledCount: filled,
			TotalCount:  len(rows),
		}
		if len(rows) > 0 {
			fq.FillRate = float64(filled) / float64(len(rows))
		}
		fq.Status = domain.StatusForFillRate(fq.FillRate)

		report.Fields = append(report.Fields, fq)
		rateSum += fq.FillRate
	}

	if len(report.Fields) > 0 {
		report.OverallScore = rateSum / float64(len(report.Fields))
	}
	return report
}
