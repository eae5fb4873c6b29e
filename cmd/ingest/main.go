// Command ingest runs the EPW ingest service: it watches a spool directory
// for EnergyPlus Weather files, parses each one, and publishes every decoded
// weather record to a Kafka topic. Health, readiness, and Prometheus metrics
// are served over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/epw-ingest-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/epw-ingest-service/internal/adapter/kafka"
	"github.com/couchcryptid/epw-ingest-service/internal/adapter/spool"
	"github.com/couchcryptid/epw-ingest-service/internal/config"
	"github.com/couchcryptid/epw-ingest-service/internal/observability"
	"github.com/couchcryptid/epw-ingest-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source, err := spool.NewScanner(cfg.SpoolDir, logger)
	if err != nil {
		logger.Error("failed to open spool directory", "error", err, "dir", cfg.SpoolDir)
		os.Exit(1)
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(logger)

	p := pipeline.New(source, transformer, writer, logger, metrics, cfg.ScanInterval, cfg.PublishBatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
