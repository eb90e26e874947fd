package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hrcore/talent-match/internal/bootstrap"
	"github.com/hrcore/talent-match/internal/config"
	"github.com/hrcore/talent-match/internal/observability/logging"
	"github.com/hrcore/talent-match/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeJobSync(ctx, func(handlerCtx context.Context) error {
		syncCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartSync()
		start := time.Now()
		syncErr := app.Indexer.SyncJobPosts(syncCtx)
		workerMetrics.FinishSync(service, time.Since(start), syncErr)
		return syncErr
	})
	if err != nil {
		slog.Error("worker subscribe", "error", err)
		os.Exit(1)
	}
}
