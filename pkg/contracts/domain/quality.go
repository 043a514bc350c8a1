package domain

// QualityStatus is the severity band assigned to a field's fill rate.
type QualityStatus string

const (
	// QualityOK marks fields filled in at least 90% of rows.
	QualityOK QualityStatus = "OK"
	// QualityWarning marks fields filled in at least 50% of rows.
	QualityWarning QualityStatus = "WARNING"
	// QualityCritical marks everything below the warning band.
	QualityCritical QualityStatus = "CRITICAL"
)

// Banding thresholds for field completeness.
const (
	QualityOKThreshold      = 0.90
	QualityWarningThreshold = 0.50
)

// StatusForFillRate maps a fill rate onto its severity band.
func StatusForFillRate(rate float64) QualityStatus {
	switch {
	case rate >= QualityOKThreshold:
		return QualityOK
	case rate >= QualityWarningThreshold:
		return QualityWarning
	default:
		return QualityCritical
	}
}

// FieldQuality is the per-canonical-field completeness measure.
type FieldQuality struct {
	Field       string        `json:"field"`
	FilledCount int           `json:"filled_count"`
	TotalCount  int           `json:"total_count"`
	FillRate    float64       `json:"fill_rate"`
	Status      QualityStatus `json:"status"`
}

// QualityReport is the data-quality section of a snapshot: per-field
// completeness plus the mean fill rate as an overall score.
type QualityReport struct {
	OverallScore float64        `json:"overall_score"`
	Fields       []FieldQuality `json:"fields"`
}
