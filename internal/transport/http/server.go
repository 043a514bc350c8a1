// Package http wires the analysis pipeline behind a chi router: the
// multipart analyze endpoint, mapping-preset management, health and
// Prometheus metrics, with RFC 7807 problem responses throughout.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendscope/internal/aggregate"
	"spendscope/internal/config"
	apierrors "spendscope/internal/errors"
	"spendscope/internal/mapping"
	custommw "spendscope/internal/middleware"
	"spendscope/internal/pipeline"
)

// Server owns the HTTP listener and its routes.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	version string
	srv     *http.Server
}

// NewServer builds a server from configuration. The preset store backs
// both the preset API and named-preset lookups on the analyze endpoint.
func NewServer(cfg config.Config, presets mapping.PresetStore, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg, logger: logger, version: version}
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router(presets),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) router(presets mapping.PresetStore) chi.Router {
	errorHandler := apierrors.NewErrorHandler(s.logger, false)

	defaults := pipeline.Input{
		HeaderRow:         pipeline.AutoDetectHeader,
		ReportingCurrency: s.cfg.Pipeline.ReportingCurrency,
		ExchangeRates:     s.cfg.Pipeline.ExchangeRates,
		Options: aggregate.Options{
			FiscalYearStartMonth: aggregate.FiscalStart(s.cfg.Pipeline.FiscalYearStartMonth),
			TailSpendMultiplier:  s.cfg.Pipeline.TailSpendMultiplier,
			ABCThresholds: aggregate.ABCThresholds{
				A: s.cfg.Pipeline.ABCThresholdA,
				B: s.cfg.Pipeline.ABCThresholdB,
			},
		},
	}

	analysisHandler := NewAnalysisHandler(
		pipeline.New(s.logger), presets, defaults,
		s.cfg.Server.MaxUploadBytes, s.logger, errorHandler)
	presetHandler := NewPresetHandler(presets, s.logger, errorHandler)
	healthHandler := NewHealthHandler(s.version, s.logger)

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(s.logger))
	r.Use(custommw.Recoverer(s.logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	if s.cfg.Server.RateLimit.Enabled {
		r.Use(custommw.NewRateLimiter(
			s.cfg.Server.RateLimit.RPS,
			s.cfg.Server.RateLimit.Burst,
			s.logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(s.cfg.Server.ReadTimeout, s.logger))
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/version", healthHandler.Version)
			r.Mount("/presets", presetHandler.Routes())
		})

		// Analysis runs get the longer write timeout; a large workbook
		// can take a while to fold.
		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(s.cfg.Server.WriteTimeout, s.logger))
			r.Mount("/analyze", analysisHandler.Routes())
		})
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// Start runs the listener until the context is cancelled, then shuts
// down gracefully within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down",
		slog.Duration("timeout", s.cfg.Server.ShutdownTimeout))
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
