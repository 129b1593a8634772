package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/env"
	"github.com/buy2brands/wholesale-api/pkg/events"
	"github.com/buy2brands/wholesale-api/pkg/instance"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/buy2brands/wholesale-api/pkg/migrate"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/buy2brands/wholesale-api/pkg/outbox/registry"
)

const metricsAddrEnv = "BUY2BRANDS_OUTBOX_METRICS_ADDR"

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if loaded, err := env.Load(); err != nil {
		logg.Error(context.Background(), "failed to read dotenv files", err)
		os.Exit(1)
	} else if len(loaded) == 0 {
		logg.Debug(context.Background(), "no dotenv files found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	transport, err := events.NewTransport(context.Background(), cfg.Events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap event transport", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	pingErr := transport.Ping(pingCtx)
	cancelPing()
	if pingErr != nil {
		logg.Error(context.Background(), "event transport unreachable", pingErr)
		_ = multierr.Combine(transport.Close(), dbClient.Close())
		os.Exit(1)
	}

	eventRegistry, err := registry.NewEventRegistry(cfg.Events)
	if err != nil {
		logg.Error(context.Background(), "failed to build event registry", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Transport:  transport,
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
		Metrics:    metrics.NewOutboxMetrics(promRegistry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox publisher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"instance":  instance.ID("outbox-publisher"),
		"transport": transport.Name(),
		"topics":    eventRegistry.Topics(),
	})

	metricsSrv := &http.Server{
		Addr:              envOr(metricsAddrEnv, ":9102"),
		Handler:           promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server failed", err)
		}
	}()

	logg.Info(ctx, "starting outbox publisher")
	runErr := service.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	closeErr := multierr.Combine(
		metricsSrv.Shutdown(shutdownCtx),
		transport.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error releasing resources", closeErr)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", runErr)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
