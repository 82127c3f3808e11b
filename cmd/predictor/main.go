package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/stadium-attendance-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/stadium-attendance-service/internal/adapter/kafka"
	"github.com/couchcryptid/stadium-attendance-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/stadium-attendance-service/internal/config"
	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"github.com/couchcryptid/stadium-attendance-service/internal/model"
	"github.com/couchcryptid/stadium-attendance-service/internal/observability"
	"github.com/couchcryptid/stadium-attendance-service/internal/pipeline"
	"github.com/couchcryptid/stadium-attendance-service/internal/refdata"
	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ref, err := refdata.Load(cfg.ReferenceDataPath, logger)
	if err != nil {
		logger.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}

	schemas, err := schema.Load(cfg.SchemaDir)
	if err != nil {
		logger.Error("failed to load feature schemas", "error", err)
		os.Exit(1)
	}

	// A missing or mismatched model is fatal; the service never starts half-loaded.
	models, err := model.Load(cfg.ModelDir, schemas)
	if err != nil {
		logger.Error("failed to load models", "error", err)
		os.Exit(1)
	}
	metrics.ModelsLoaded.Set(float64(models.Len()))
	logger.Info("models loaded", "count", models.Len(), "leagues", schemas.Leagues())

	// Weather lookups are feature-flagged via WEATHER_ENABLED.
	var resolver domain.WeatherResolver
	if cfg.WeatherEnabled {
		resolver = openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.WeatherMaxRetries, metrics, logger)
		metrics.WeatherEnabled.Set(1)
		logger.Info("weather lookups enabled", "base_url", cfg.WeatherBaseURL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("weather lookups disabled")
	}

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.EventsEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaPredictionsTopic)
	}

	p := pipeline.New(ref, models, resolver, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
