package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/exprbridge/internal/cache"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/journal"
	"github.com/specialistvlad/exprbridge/internal/metrics"
	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/specialistvlad/exprbridge/internal/wire"
	"github.com/specialistvlad/exprbridge/modules"
	"github.com/zclconf/go-cty/cty/function"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	level      *slog.LevelVar
	configPath string

	mu  sync.RWMutex
	cfg *config.Config

	registry  *registry.Registry
	functions map[string]function.Function
	collector *metrics.Collector
	cache     atomic.Pointer[cache.Cache]
	journal   *journal.Journal

	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithConfigPath records the file cfg was loaded from, enabling reloads.
func WithConfigPath(path string) Option {
	return func(a *App) {
		a.configPath = path
	}
}

// WithModules replaces the core function modules.
func WithModules(mods ...registry.Module) Option {
	return func(a *App) {
		a.registry = registry.New(mods...)
	}
}

// NewApp builds an App from a validated configuration. Logs go to outW.
func NewApp(ctx context.Context, outW io.Writer, cfg *config.Config, opts ...Option) (*App, error) {
	level := new(slog.LevelVar)
	level.Set(ctxlog.ParseLevel(cfg.Log.Level))
	logger := ctxlog.NewWithLevel(level, cfg.Log.Format, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		level:  level,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		a.registry = modules.NewRegistry()
	}
	if err := a.registry.ValidateRegistry(ctx); err != nil {
		return nil, fmt.Errorf("function registry is invalid: %w", err)
	}
	a.functions = a.registry.Functions()
	logger.Debug("Function registry validated.", "functions", a.registry.Len())

	a.collector = metrics.NewCollector(cfg.Metrics, nil)
	a.cache.Store(cache.New(cfg.Engine.CacheCapacity, a.collector))

	if cfg.Journal.Enabled() {
		j, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		a.journal = j
		logger.Debug("Evaluation journal opened.", "path", cfg.Journal.Path, "driver", cfg.Journal.Driver)
	}
	return a, nil
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Collector returns the metrics collector.
func (a *App) Collector() *metrics.Collector {
	return a.collector
}

// Cache returns the active compile cache, nil when caching is disabled.
func (a *App) Cache() *cache.Cache {
	return a.cache.Load()
}

// Runner returns a wire runner bound to the current cache and functions.
func (a *App) Runner() *wire.Runner {
	return &wire.Runner{
		Cache:     a.cache.Load(),
		Functions: a.functions,
		MaxBytes:  a.Config().Engine.MaxExpressionBytes,
		Observer:  a.collector,
	}
}

// Journal returns the evaluation journal, nil when disabled.
func (a *App) Journal() *journal.Journal {
	return a.journal
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
