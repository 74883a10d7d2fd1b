package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/appraise/internal/adapters/http/api"
	"github.com/okian/appraise/internal/adapters/http/swagger"
	app "github.com/okian/appraise/internal/app"
	"github.com/okian/appraise/internal/config"
	"github.com/okian/appraise/internal/domain/catalog"
	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	"github.com/okian/appraise/pkg/logger"
	"github.com/okian/appraise/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 35 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "appraise exited", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Defaults -> optional file -> env.
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			_ = svc.Stop(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	// Queued submissions are scored before exit.
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService resolves the taxonomy and catalog named by cfg and builds the
// scoring service.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	reg, err := taxonomy.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load built-in taxonomies: %w", err)
	}
	if cfg.TaxonomyDir != "" {
		if err := reg.LoadDir(cfg.TaxonomyDir); err != nil {
			return nil, fmt.Errorf("load taxonomy dir: %w", err)
		}
	}
	tax, err := reg.Get(cfg.TaxonomyVersion)
	if err != nil {
		return nil, fmt.Errorf("select taxonomy: %w", err)
	}

	cat := catalog.FromTaxonomy(tax)
	if cfg.CatalogPath != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	logger.Get().Info(ctx, "scoring configuration",
		logger.String("taxonomy_version", tax.Version),
		logger.Any("available_versions", reg.Versions()),
		logger.Int("questions", cat.Len()),
		logger.String("catalog_path", cfg.CatalogPath),
	)

	engine := scoring.NewEngine(
		scoring.WithDefaultCorrectOption(cfg.DefaultCorrectOption),
		scoring.WithCompositeSeparator(cfg.CompositeSeparator),
		scoring.WithIndeterminateLabel(cfg.IndeterminateLabel),
	)
	return app.New(tax, cat,
		app.WithLogger(logger.Get().Named("service")),
		app.WithEngine(engine),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
	), nil
}

// newRouter registers the API docs and the business API.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	r := chi.NewRouter()
	api.NewServer(svc, svc,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithLogger(logger.Get().Named("http")),
	).Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater periodically records process metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
