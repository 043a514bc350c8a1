package normalize

import (
	"log/slog"
	"sort"
	"strings"

	"spendscope/internal/grid"
	"spendscope/internal/mapping"
	"spendscope/pkg/contracts/domain"
)

// noiseMarkers are the lower-cased substrings that mark a subtotal or
// footer row injected by the source system.
var noiseMarkers = []string{"grand total", "subtotal", "total"}

// Config controls a normalization run.
type Config struct {
	Mapping           mapping.FieldMapping
	ReportingCurrency string
	ExchangeRates     map[string]float64

	// StickyColumns are forward-filled onto continuation rows; the
	// MarkerColumns signal that a row is a genuine line item. Both
	// default from the field mapping when empty.
	StickyColumns []string
	MarkerColumns []string
}

// Result is the output of a normalization run: canonical rows plus the
// currency bookkeeping and drop counts for the quality surface.
type Result struct {
	Rows     []domain.Row
	Currency domain.CurrencyStats

	NoiseRows int
	BlankRows int
}

// Normalizer converts positional data rows into canonical rows.
type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a normalizer. Defaults: USD reporting currency, the
// static exchange-rate table, supplier/date/invoice as sticky columns
// and description/amount as markers.
func New(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mapping == nil {
		cfg.Mapping = mapping.Resolve(nil)
	}
	if cfg.ReportingCurrency == "" {
		cfg.ReportingCurrency = "USD"
	}
	if len(cfg.ExchangeRates) == 0 {
		cfg.ExchangeRates = DefaultExchangeRates
	}
	if cfg.StickyColumns == nil {
		cfg.StickyColumns = []string{
			NormalizeKey(cfg.Mapping.Column(mapping.FieldSupplier)),
			NormalizeKey(cfg.Mapping.Column(mapping.FieldDate)),
			NormalizeKey(cfg.Mapping.Column(mapping.FieldInvoiceRef)),
		}
	}
	if cfg.MarkerColumns == nil {
		cfg.MarkerColumns = []string{
			NormalizeKey(cfg.Mapping.Column(mapping.FieldDescription)),
			NormalizeKey(cfg.Mapping.Column(mapping.FieldAmount)),
		}
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Run processes the grid's data rows below the chosen header row. Key
// normalization, stitching, noise filtering and currency conversion are
// folded into one forward pass; re-running on the same input yields the
// same output.
func (n *Normalizer) Run(g *grid.RawGrid, headerRow int) Result {
	keys := make([]string, 0)
	for _, h := range g.HeaderAt(headerRow) {
		keys = append(keys, NormalizeKey(h))
	}

	amountKey := NormalizeKey(n.cfg.Mapping.Column(mapping.FieldAmount))
	dateKey := NormalizeKey(n.cfg.Mapping.Column(mapping.FieldDate))
	currencyKey := NormalizeKey(n.cfg.Mapping.Column(mapping.FieldCurrency))
	currencyMapped := n.cfg.Mapping.HasExplicit(mapping.FieldCurrency)

	st := &stitcher{
		sticky:   n.cfg.StickyColumns,
		markers:  n.cfg.MarkerColumns,
		lastSeen: make(map[string]domain.Value),
	}

	result := Result{
		Currency: domain.CurrencyStats{ReportingCurrency: n.cfg.ReportingCurrency},
	}
	detected := make(map[string]bool)

	for _, raw := range g.DataRows(headerRow) {
		row := n.buildRow(keys, raw, dateKey)

		st.apply(row)

		if row.IsBlank() {
			result.BlankRows++
			continue
		}
		if isNoise(row) {
			result.NoiseRows++
			continue
		}

		n.applyCurrency(row, amountKey, currencyKey, currencyMapped, detected, &result)
		result.Rows = append(result.Rows, row)
	}

	result.Currency.Detected = sortedKeys(detected)

	n.logger.Debug("normalization complete",
		slog.Int("rows", len(result.Rows)),
		slog.Int("noise_rows", result.NoiseRows),
		slog.Int("blank_rows", result.BlankRows),
		slog.Bool("currency_assumed", result.Currency.AssumptionsMade))

	return result
}

// buildRow converts one positional row into a canonical row. Cells
// under an empty header have no addressable key and are dropped; the
// date column is parsed eagerly, everything else stays text until the
// currency step.
func (n *Normalizer) buildRow(keys []string, raw []string, dateKey string) domain.Row {
	row := make(domain.Row, len(keys))
	for i, key := range keys {
		if key == "" {
			continue
		}
		cell := ""
		if i < len(raw) {
			cell = strings.TrimSpace(raw[i])
		}
		if key == dateKey {
			if d, ok := ParseDate(cell); ok {
				row.Set(key, domain.DateValue(d))
			} else {
				row.Set(key, domain.EmptyValue())
			}
			continue
		}
		row.Set(key, domain.TextValue(cell))
	}
	return row
}

// applyCurrency resolves the row's currency, converts the amount cell
// into the reporting currency and updates the run statistics.
func (n *Normalizer) applyCurrency(row domain.Row, amountKey, currencyKey string, currencyMapped bool, detected map[string]bool, result *Result) {
	explicit := ""
	if currencyMapped {
		explicit = row.Get(currencyKey).AsString()
	}
	amountText := row.Get(amountKey).AsString()

	code, fromData := DetectCurrency(explicit, amountText, n.cfg.ReportingCurrency)

	amount, parsed := ParseAmount(amountText)
	if parsed {
		converted := ConvertAmount(amount, code, n.cfg.ReportingCurrency, n.cfg.ExchangeRates)
		row.Set(amountKey, domain.NumberValue(converted))
	} else if amountText != "" {
		row.Set(amountKey, domain.EmptyValue())
	}

	switch {
	case fromData:
		result.Currency.RowsConverted++
		detected[code] = true
		row.Set(currencyKey, domain.TextValue(code))
	case parsed:
		result.Currency.RowsAssumed++
		result.Currency.AssumptionsMade = true
		detected[n.cfg.ReportingCurrency] = true
		row.Set(currencyKey, domain.TextValue(n.cfg.ReportingCurrency))
	}
}

// stitcher carries the forward-fill state across the row sequence.
type stitcher struct {
	sticky   []string
	markers  []string
	lastSeen map[string]domain.Value
}

// apply records the row's own sticky values and fills empty sticky
// cells from the last-seen context, but only when the row shows a
// positive marker signal. Rows with neither markers nor their own
// sticky values stay empty, which keeps stale vendor or date context
// out of footer and garbage rows.
func (s *stitcher) apply(row domain.Row) {
	fill := s.hasMarker(row)
	for _, col := range s.sticky {
		if col == "" {
			continue
		}
		own := row.Get(col)
		if !own.IsEmpty() {
			s.lastSeen[col] = own
			continue
		}
		if !fill {
			continue
		}
		if last, ok := s.lastSeen[col]; ok {
			row.Set(col, last)
		}
	}
}

func (s *stitcher) hasMarker(row domain.Row) bool {
	if len(s.markers) == 0 {
		return true
	}
	for _, col := range s.markers {
		if col == "" {
			continue
		}
		if !row.Get(col).IsEmpty() {
			return true
		}
	}
	return false
}

func isNoise(row domain.Row) bool {
	for _, marker := range noiseMarkers {
		if row.ContainsText(marker) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
