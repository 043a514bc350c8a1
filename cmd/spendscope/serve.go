package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spendscope/internal/infrastructure"
	"spendscope/internal/mapping"
	transport "spendscope/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP service",
	Long: `Serve starts the HTTP service: the multipart analyze endpoint,
mapping-preset management, health checks and Prometheus metrics. The
process shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	presets := mapping.NewFileStore(cfg.Pipeline.PresetsFile)
	srv := transport.NewServer(*cfg, presets, Version, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting spendscope service",
		slog.Int("port", cfg.Server.Port),
		slog.String("version", Version))
	return srv.Start(ctx)
}
