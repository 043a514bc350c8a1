package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"spendscope/internal/config"
	"spendscope/internal/infrastructure"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spendscope",
	Short: "Procurement spreadsheet analysis",
	Long: `spendscope turns messy procurement spreadsheets into spend analytics:
header detection, column mapping, currency normalization, and
supplier / category / time rollups with ABC, maverick and tail-spend
classification.

  spendscope analyze spend.xlsx --out reports/
  spendscope serve --config config.yml`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the configuration file")
}

// loadConfig reads configuration and initializes the global logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}
