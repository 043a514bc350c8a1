// Package pipeline orchestrates a full analysis run: load the grid,
// detect the header, resolve merges, map columns, normalize rows,
// aggregate, and optionally write the export artifacts. Each run is a
// pure function of its input; the pipeline holds no state between runs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spendscope/internal/aggregate"
	apperrors "spendscope/internal/errors"
	"spendscope/internal/export"
	"spendscope/internal/grid"
	"spendscope/internal/mapping"
	"spendscope/internal/normalize"
	"spendscope/pkg/contracts/domain"
)

// AutoDetectHeader asks the pipeline to pick the header row itself.
const AutoDetectHeader = -1

// Input describes one analysis run. Either Path or Grid must be set;
// Grid wins when both are.
type Input struct {
	Path  string
	Sheet string
	Grid  *grid.RawGrid

	// HeaderRow is the zero-based header row, or AutoDetectHeader to
	// use the detector's recommendation.
	HeaderRow int

	// Mapping overrides column resolution. Nil triggers the auto-map
	// heuristic over the detected header row.
	Mapping mapping.FieldMapping

	ReportingCurrency string
	ExchangeRates     map[string]float64
	Options           aggregate.Options

	// OutputDir enables artifact writing: CSV files per table, the
	// snapshot JSON and the report workbook. Empty skips writing.
	OutputDir string
}

// Result is a completed run.
type Result struct {
	RunID       string
	GeneratedAt time.Time

	Header       grid.HeaderReport
	Mapping      mapping.FieldMapping
	Snapshot     domain.AggregateSnapshot
	Transactions []domain.Transaction

	NoiseRows int
	BlankRows int

	OutputFiles []string
}

// Pipeline runs analyses. Safe for concurrent use.
type Pipeline struct {
	logger *slog.Logger
}

// New creates a pipeline.
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Run executes one analysis. Only an unreadable input or a cancelled
// context fails the run; data-level problems degrade into empty values
// and the quality report.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(slog.String("run_id", runID))

	result, err := p.run(ctx, in, runID, logger)
	runDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		logger.Error("analysis run failed", slog.String("error", err.Error()))
		return nil, err
	}

	runsTotal.WithLabelValues("ok").Inc()
	rowsProcessed.Add(float64(result.Snapshot.TransactionCount))
	rowsDropped.WithLabelValues("noise").Add(float64(result.NoiseRows))
	rowsDropped.WithLabelValues("blank").Add(float64(result.BlankRows))

	logger.Info("analysis run complete",
		slog.Int("transactions", result.Snapshot.TransactionCount),
		slog.Float64("total_spend", result.Snapshot.TotalSpend),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, runID string, logger *slog.Logger) (*Result, error) {
	g := in.Grid
	if g == nil {
		if in.Path == "" {
			return nil, fmt.Errorf("no input: path or grid required")
		}
		loaded, err := grid.LoadFile(in.Path, in.Sheet)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to load %s", in.Path), err).
				WithContext("path", in.Path)
		}
		g = loaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := grid.DetectHeader(g, grid.DefaultScanRows, nil)
	headerRow := in.HeaderRow
	if headerRow == AutoDetectHeader {
		headerRow = report.Recommended
	}
	logger.Debug("header detected",
		slog.Int("recommended", report.Recommended),
		slog.Int("chosen", headerRow))

	resolved := grid.ResolveMerges(g)

	fm := in.Mapping
	if fm == nil {
		fm = mapping.Resolve(mapping.AutoMap(resolved.HeaderAt(headerRow)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := normalize.New(normalize.Config{
		Mapping:           fm,
		ReportingCurrency: in.ReportingCurrency,
		ExchangeRates:     in.ExchangeRates,
	}, logger)
	normResult := norm.Run(resolved, headerRow)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine := aggregate.NewEngine(in.Options, logger)
	agg := engine.Aggregate(normResult.Rows, fm, normResult.Currency)
	agg.Snapshot.RunID = runID
	agg.Snapshot.GeneratedAt = time.Now().UTC()

	result := &Result{
		RunID:        runID,
		GeneratedAt:  agg.Snapshot.GeneratedAt,
		Header:       report,
		Mapping:      fm,
		Snapshot:     agg.Snapshot,
		Transactions: agg.Transactions,
		NoiseRows:    normResult.NoiseRows,
		BlankRows:    normResult.BlankRows,
	}

	if in.OutputDir != "" {
		files, err := p.writeArtifacts(in.OutputDir, result)
		if err != nil {
			return nil, err
		}
		result.OutputFiles = files
	}
	return result, nil
}

// writeArtifacts renders the export model into OutputDir: one CSV per
// table, the snapshot JSON and the xlsx report.
func (p *Pipeline) writeArtifacts(dir string, result *Result) ([]string, error) {
	model := export.BuildModel(&result.Snapshot, result.Transactions)

	files := make([]string, 0, 9)
	csvWriter := export.NewCSVWriter(dir, p.logger)
	if err := csvWriter.WriteModel(model); err != nil {
		return nil, apperrors.NewStorageError("failed to write csv tables", err).WithContext("dir", dir)
	}
	for _, table := range model.Tables() {
		files = append(files, filepath.Join(dir, table.Name+".csv"))
	}

	jsonPath := filepath.Join(dir, "snapshot.json")
	if err := export.WriteSnapshotJSON(jsonPath, &result.Snapshot); err != nil {
		return nil, apperrors.NewStorageError("failed to write snapshot json", err).WithContext("path", jsonPath)
	}
	files = append(files, jsonPath)

	xlsxPath := filepath.Join(dir, "spend_analysis.xlsx")
	if err := export.WriteWorkbook(xlsxPath, &result.Snapshot, model); err != nil {
		return nil, apperrors.NewStorageError("failed to write workbook", err).WithContext("path", xlsxPath)
	}
	files = append(files, xlsxPath)

	return files, nil
}
