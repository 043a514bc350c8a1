package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"spendscope/internal/aggregate"
	"spendscope/internal/config"
	"spendscope/internal/mapping"
	"spendscope/internal/pipeline"
	"spendscope/pkg/contracts/domain"
)

var (
	analyzeOut         string
	analyzeSheet       string
	analyzeCurrency    string
	analyzeHeaderRow   int
	analyzeFiscalStart int
	analyzeTailMult    float64
	analyzePreset      string
	analyzeConcurrency int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze one or more spreadsheets and write report artifacts",
	Long: `Analyze runs the full pipeline over each input file: header
detection, column mapping, row normalization, aggregation, and report
generation. Artifacts land under the output directory, one subdirectory
per input file when several are given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "output directory (default from configuration)")
	analyzeCmd.Flags().StringVar(&analyzeSheet, "sheet", "", "worksheet name (default: first sheet)")
	analyzeCmd.Flags().StringVar(&analyzeCurrency, "currency", "", "reporting currency code, e.g. USD")
	analyzeCmd.Flags().IntVar(&analyzeHeaderRow, "header-row", pipeline.AutoDetectHeader, "zero-based header row (default: auto-detect)")
	analyzeCmd.Flags().IntVar(&analyzeFiscalStart, "fiscal-start-month", -1, "zero-based fiscal year start month (0 = January)")
	analyzeCmd.Flags().Float64Var(&analyzeTailMult, "tail-multiplier", 0, "tail-spend ceiling as a fraction of the average transaction")
	analyzeCmd.Flags().StringVar(&analyzePreset, "preset", "", "named column-mapping preset to apply")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "parallel file limit (default from configuration)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	in, err := buildRunInput(cfg)
	if err != nil {
		return err
	}

	concurrency := cfg.Pipeline.Concurrency
	if analyzeConcurrency > 0 {
		concurrency = analyzeConcurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(logger)

	if len(args) == 1 {
		result, err := p.Run(ctx, withPath(in, args[0]))
		if err != nil {
			return fmt.Errorf("analyze %s: %w", args[0], err)
		}
		printSummary(cmd, args[0], result)
		return nil
	}

	results, err := p.RunFiles(ctx, args, in, concurrency)
	for _, fr := range results {
		if fr.Err != nil {
			cmd.PrintErrf("FAILED  %s: %v\n", fr.Path, fr.Err)
			continue
		}
		printSummary(cmd, fr.Path, fr.Result)
	}
	if err != nil {
		return fmt.Errorf("one or more files failed: %w", err)
	}
	return nil
}

func withPath(in pipeline.Input, path string) pipeline.Input {
	in.Path = path
	return in
}

// buildRunInput turns configuration plus flags into the shared pipeline
// input. Flags win over the configuration file.
func buildRunInput(cfg *config.Config) (pipeline.Input, error) {
	in := pipeline.Input{
		Sheet:             analyzeSheet,
		HeaderRow:         analyzeHeaderRow,
		ReportingCurrency: cfg.Pipeline.ReportingCurrency,
		ExchangeRates:     cfg.Pipeline.ExchangeRates,
		OutputDir:         cfg.Pipeline.OutputDir,
		Options: aggregate.Options{
			FiscalYearStartMonth: aggregate.FiscalStart(cfg.Pipeline.FiscalYearStartMonth),
			TailSpendMultiplier:  cfg.Pipeline.TailSpendMultiplier,
			ABCThresholds: aggregate.ABCThresholds{
				A: cfg.Pipeline.ABCThresholdA,
				B: cfg.Pipeline.ABCThresholdB,
			},
		},
	}

	if analyzeOut != "" {
		in.OutputDir = analyzeOut
	}
	if analyzeCurrency != "" {
		if len(analyzeCurrency) != 3 {
			return in, fmt.Errorf("reporting currency must be a 3-letter code, got %q", analyzeCurrency)
		}
		in.ReportingCurrency = strings.ToUpper(analyzeCurrency)
	}
	if analyzeFiscalStart >= 0 {
		if analyzeFiscalStart > 11 {
			return in, fmt.Errorf("fiscal start month must be between 0 and 11, got %d", analyzeFiscalStart)
		}
		in.Options.FiscalYearStartMonth = aggregate.FiscalStart(analyzeFiscalStart)
	}
	if analyzeTailMult > 0 {
		in.Options.TailSpendMultiplier = analyzeTailMult
	}

	if analyzePreset != "" {
		store := mapping.NewFileStore(cfg.Pipeline.PresetsFile)
		fm, ok, err := store.Load(analyzePreset)
		if err != nil {
			return in, fmt.Errorf("load preset %q: %w", analyzePreset, err)
		}
		if !ok {
			return in, fmt.Errorf("preset %q not found in %s", analyzePreset, cfg.Pipeline.PresetsFile)
		}
		in.Mapping = fm
	}

	return in, nil
}

func printSummary(cmd *cobra.Command, path string, result *pipeline.Result) {
	s := result.Snapshot
	cmd.Printf("%s\n", path)
	cmd.Printf("  transactions: %d  suppliers: %d  total: %.2f %s\n",
		s.TransactionCount, s.SupplierCount, s.TotalSpend, s.Currency.ReportingCurrency)
	if s.PeriodStart != "" {
		cmd.Printf("  period: %s .. %s\n", s.PeriodStart, s.PeriodEnd)
	}
	cmd.Printf("  quality: %.0f%% (%s)  noise rows: %d\n",
		s.Quality.OverallScore*100, domain.StatusForFillRate(s.Quality.OverallScore), result.NoiseRows)
	for _, f := range result.OutputFiles {
		cmd.Printf("  wrote %s\n", f)
	}
}
