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

	httpadapter "github.com/hrcore/talent-match/internal/adapters/http"
	"github.com/hrcore/talent-match/internal/bootstrap"
	"github.com/hrcore/talent-match/internal/config"
	"github.com/hrcore/talent-match/internal/observability/logging"
	"github.com/hrcore/talent-match/internal/observability/metrics"
)

const service = "api"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverMetrics := metrics.NewHTTPServerMetrics(service)
	app, err := bootstrap.New(ctx, cfg,
		bootstrap.WithMatchObserver(serverMetrics),
		bootstrap.WithLLMRetryObserver(serverMetrics.RetryAttempted),
	)
	if err != nil {
		slog.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.Matcher,
		app.BestJob,
		app.Content,
		app.Ingest,
		app.Queue,
		httpadapter.WithMetrics(service, serverMetrics),
		httpadapter.WithTrafficControl(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst, cfg.APIMaxConcurrent),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", serverMetrics.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown", "error", err)
	}
}
