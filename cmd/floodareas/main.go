package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/adapter/floodmonitoring"
	httpadapter "github.com/couchcryptid/flood-area-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-area-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-area-service/internal/adapter/osnames"
	redisadapter "github.com/couchcryptid/flood-area-service/internal/adapter/redis"
	"github.com/couchcryptid/flood-area-service/internal/config"
	"github.com/couchcryptid/flood-area-service/internal/observability"
	"github.com/couchcryptid/flood-area-service/internal/pipeline"
	"github.com/couchcryptid/flood-area-service/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const redisConnectAttempts = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	geocoder := osnames.NewCachedGeocoder(
		osnames.NewClient(cfg.OSAPIKey, cfg.OSNamesURL, cfg.GeocodeTimeout, metrics, logger),
		cfg.GeocodeCacheSize, metrics,
	)
	source := floodmonitoring.NewCachedSource(
		floodmonitoring.NewClient(cfg.FloodAPIURL, cfg.FloodAPITimeout, metrics, logger),
		cfg.PolygonCacheSize, metrics,
	)

	store, closeStore, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}

	// Subscription events are feature-flagged via KAFKA_ENABLED.
	var events pipeline.EventPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		events = writer
		logger.Info("subscription events enabled", "topic", cfg.KafkaSubscriptionTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("subscription events disabled")
	}

	p := pipeline.New(geocoder, source, store, events, pipeline.Config{
		Policy:       cfg.Policy,
		FetchTimeout: cfg.PolygonFetchTimeout,
		Concurrency:  cfg.PolygonFetchConcurrency,
	}, logger, metrics)
	logger.Info("flood profile", "profile", cfg.Policy.Name, "scheme", cfg.Policy.Scheme.Name, "method", cfg.Policy.Method)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

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
	if err := closeStore(); err != nil {
		logger.Error("session store close error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newSessionStore opens the configured session backend. Redis is pinged with
// backoff so the service can start alongside it.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, func() error, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		logger.Info("using in-memory sessions", "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionTTL, nil), func() error { return nil }, nil
	}

	client := redisadapter.NewClient(cfg.RedisAddr)
	backoff := 200 * time.Millisecond
	var err error
	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			break
		}
		logger.Warn("redis not reachable", "addr", cfg.RedisAddr, "attempt", attempt, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, 5*time.Second)
	}
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("using redis sessions", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return redisadapter.NewStore(client, cfg.SessionTTL, nil, logger), client.Close, nil
}
