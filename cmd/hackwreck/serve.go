package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/okian/hackwreck/internal/adapters/cache"
	"github.com/okian/hackwreck/internal/adapters/github"
	"github.com/okian/hackwreck/internal/adapters/http/api"
	"github.com/okian/hackwreck/internal/adapters/llm"
	"github.com/okian/hackwreck/internal/adapters/repository"
	service "github.com/okian/hackwreck/internal/app"
	"github.com/okian/hackwreck/internal/config"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// HTTP server timeout constants. Handlers wait on the language model, so the
// write timeout sits above the per-request handler timeout.
const (
	readTimeout       = 10 * time.Second
	handlerTimeout    = 2 * time.Minute
	writeTimeout      = handlerTimeout + 30*time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HackWreck API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	metrics.Init(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	)
	if metrics.Enabled() {
		metrics.GetRegistry().MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	store, err := repository.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	analyzer := newAnalyzer(ctx, cfg, log)

	c := newCache(ctx, cfg, log)
	defer func() { _ = c.Close() }()

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithCache(c, cfg.CacheTTL()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithSpeechLimit(cfg.ReadAloudMaxChars),
	}
	if cfg.VerifyRepos {
		opts = append(opts, service.WithVerifier(github.NewVerifier(cfg.GitHubAPIURL,
			github.WithLogger(log.Named("github")),
		)))
	}

	svc := service.New(store, analyzer, opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "stop service", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	server := api.NewServer(ctx, svc,
		api.WithAllowedOrigins(cfg.AllowedOrigins()),
		api.WithRequestTimeout(handlerTimeout),
		api.WithLogger(log.Named("api")),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newAnalyzer returns Gemini when a key is configured. Without one the
// catalogue is still served and AI endpoints answer 503.
func newAnalyzer(ctx context.Context, cfg *config.Config, log logger.Logger) llm.Analyzer {
	if cfg.GeminiAPIKey == "" {
		log.Warn(ctx, "no Gemini API key configured; AI endpoints are disabled")
		return llm.Disabled{}
	}
	g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey,
		llm.WithModel(cfg.GeminiModel),
		llm.WithSpeech(cfg.TTSModel, cfg.TTSVoice),
		llm.WithLogger(log.Named("gemini")),
	)
	if err != nil {
		log.Error(ctx, "gemini client unavailable; AI endpoints are disabled", logger.Error(err))
		return llm.Disabled{}
	}
	return g
}

// newCache prefers Redis when an address is configured and falls back to an
// in-process cache.
func newCache(ctx context.Context, cfg *config.Config, log logger.Logger) cache.Cache {
	if cfg.CacheAddr != "" {
		r, err := cache.NewRedis(ctx, cfg.CacheAddr)
		if err == nil {
			return r
		}
		log.Warn(ctx, "redis unavailable; using in-memory cache",
			logger.String("addr", cfg.CacheAddr),
			logger.Error(err),
		)
	}
	return cache.NewMemory()
}

// startServiceMetricsUpdater refreshes catalogue gauges every
// metrics.RefreshInterval until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.RefreshMetrics(ctx)
		}
	}
}
