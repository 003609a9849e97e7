package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/five82/handik/internal/config"
	"github.com/five82/handik/internal/handik"
	"github.com/five82/handik/internal/logging"
	"github.com/five82/handik/internal/motion"
	"github.com/five82/handik/internal/prefs"
	"github.com/five82/handik/internal/state"
	"github.com/five82/handik/internal/ui"
)

// Options configure the robotviz application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/handik/prefs.toml
	// BaseURL overrides the visualizer backend from the config file.
	BaseURL string
	// ModelPath is a URDF file to load at start.
	ModelPath string
}

// Run boots the robotviz TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.BaseURL != "" {
		cfg.VisualizerURL = opts.BaseURL
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	// The terminal belongs to the UI, so logs go to the file the log pane tails.
	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: logging.FormatJSON,
		Path:   cfg.LogPath,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	health, err := handik.NewClient(cfg.VisualizerURL,
		handik.WithLogger(logger.Named("health")),
		handik.WithMetrics(handik.NewMetrics(reg)))
	if err != nil {
		return fmt.Errorf("init health client: %w", err)
	}
	backend, err := motion.NewClient(cfg.VisualizerURL, motion.WithLogger(logger.Named("motion")))
	if err != nil {
		return fmt.Errorf("init motion client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	store := &state.Store{}
	StartPoller(ctx, store, health, cfg.HealthPoll, logger.Named("poller"))

	logger.Info("robotviz starting",
		zap.String("backend", backend.BaseURL()),
		zap.String("model", opts.ModelPath))

	err = ui.Run(ui.Options{
		Context:   ctx,
		Backend:   backend,
		Store:     store,
		Logger:    logger.Named("ui"),
		ModelPath: opts.ModelPath,
		LogPath:   cfg.LogPath,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
	logger.Info("robotviz exiting", zap.Error(err))
	return err
}

// MetricsRouter serves /metrics for reg.
func MetricsRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

// serveMetrics runs the metrics listener until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           MetricsRouter(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
