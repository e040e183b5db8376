package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/packer/internal/api"
	"github.com/eugenenazirov/packer/internal/config"
	"github.com/eugenenazirov/packer/internal/knapsack"
	"github.com/eugenenazirov/packer/internal/metrics"
	"github.com/eugenenazirov/packer/internal/packer"
	"github.com/eugenenazirov/packer/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	packer   *packer.Packer
	registry *prometheus.Registry
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetLimits(cfg.Limits); err != nil {
		return nil, fmt.Errorf("failed to apply initial limits: %w", err)
	}

	var (
		registry *prometheus.Registry
		recorder metrics.Recorder = metrics.NewNop()
	)
	if cfg.EnableMetrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		prom, err := metrics.NewPrometheus(registry, "")
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		recorder = prom
	}

	pk, err := NewPacker(cfg, logger, store.GetLimits, recorder)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(pk, store)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	var metricsHandler http.Handler
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	return &App{
		storage:  store,
		packer:   pk,
		registry: registry,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, BuildRootHandler(apiRouter, metricsHandler)),
	}, nil
}

// NewPacker builds a Packer from configuration. When cfg.CacheSize is positive
// the optimizer is wrapped with a selection cache.
func NewPacker(cfg config.Config, logger *zap.Logger, limits packer.LimitsFunc, recorder metrics.Recorder) (*packer.Packer, error) {
	optimizer := knapsack.New()
	if cfg.CacheSize > 0 {
		cached, err := packer.NewCachedOptimizer(optimizer, cfg.CacheSize, recorder)
		if err != nil {
			return nil, fmt.Errorf("failed to build optimizer: %w", err)
		}
		optimizer = cached
	}

	return packer.New(
		packer.WithOptimizer(optimizer),
		packer.WithLimits(limits),
		packer.WithLogger(logger),
		packer.WithMetrics(recorder),
	), nil
}

// BuildRootHandler mounts the API under /api/ and, when provided, the metrics
// handler under /metrics.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.Handle("/", http.NotFoundHandler())
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
