package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/draftsim/internal/adapters/baas"
	"github.com/okian/draftsim/internal/adapters/http/api"
	"github.com/okian/draftsim/internal/adapters/http/swagger"
	app "github.com/okian/draftsim/internal/app"
	"github.com/okian/draftsim/internal/config"
	"github.com/okian/draftsim/pkg/logger"
	"github.com/okian/draftsim/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to build service", logger.Error(err))
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Fatal(ctx, "failed to start service", logger.Error(err))
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService maps configuration onto service options and picks the vote
// aggregate backend.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithRunCache(cfg.RunCacheSize, time.Duration(cfg.RunTTLSeconds)*time.Second),
		app.WithRounds(cfg.Rounds),
		app.WithDevelopmentFrom(cfg.DevelopmentFrom),
		app.WithDraftYear(cfg.DraftYear),
		app.WithWeights(cfg.Weights),
		app.WithOrders(cfg.FirstRoundOrder, cfg.WaiverOrder),
		app.WithLotteryPriority(cfg.LotteryPriority),
		app.WithHumanPickTimeout(time.Duration(cfg.HumanPickTimeoutMS) * time.Millisecond),
		app.WithJobTimeout(time.Duration(cfg.JobTimeoutSeconds) * time.Second),
		app.WithSimilarityThreshold(cfg.SimilarityThreshold),
	}

	if cfg.VoteSource == config.VoteSourceRemote {
		client, err := baas.NewClient(cfg.Remote.BaseURL,
			baas.WithAPIKey(cfg.Remote.APIKey),
			baas.WithRate(cfg.Remote.RatePerSecond),
			baas.WithTimeout(time.Duration(cfg.Remote.TimeoutMS)*time.Millisecond),
			baas.WithLogger(log.Named("baas")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote vote client: %w", err)
		}
		opts = append(opts, app.WithVoteSource(client))
	}

	if !cfg.Weights.IsZero() && !cfg.Weights.Balanced() {
		log.Warn(context.Background(), "configured weights do not sum to 100",
			logger.Float64("sum", cfg.Weights.Sum()))
	}
	return app.New(opts...), nil
}

// newRouter mounts the docs and business API on one chi router.
func newRouter(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	api.NewServer(svc, api.WithLogger(log.Named("http"))).Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// startServiceMetricsUpdater periodically publishes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics copies service stats into Prometheus gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if active, ok := stats["activeWorkers"].(int); ok {
		metrics.UpdateWorkerActiveCount(active)
	}
	if runs, ok := stats["runs"].(int); ok {
		metrics.UpdateRunStoreSize(runs)
	}
}
