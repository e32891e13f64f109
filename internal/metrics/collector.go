// Package metrics exposes Prometheus instrumentation for the engine, the
// handle tables, the compile cache and the HTTP playground.
//
// Every method on *Collector is safe to call on a nil receiver and on a
// disabled collector, so callers never guard instrumentation sites.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/diag"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector owns a Prometheus registry and every metric registered on it.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	engine *EngineMetrics
	cache  *CacheMetrics
	http   *HTTPMetrics
}

// NewCollector registers all metrics on registry. A nil registry gets a
// fresh one. cfg is expected to have had config.ApplyDefaults run on it.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = prometheus.DefBuckets
	}

	c := &Collector{
		enabled:  cfg.IsEnabled(),
		registry: registry,
	}
	if !c.enabled {
		return c
	}
	c.engine = NewEngineMetrics(cfg, registry)
	c.cache = NewCacheMetrics(cfg, registry)
	c.http = NewHTTPMetrics(cfg, registry)
	return c
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// ObserveCompile records one compile call. kind is diag.KindNone on success.
func (c *Collector) ObserveCompile(kind diag.Kind, d time.Duration) {
	if !c.Enabled() {
		return
	}
	c.engine.observe(c.engine.compileTotal, c.engine.compileDuration, kind, d)
}

// ObserveEvaluate records one evaluate call.
func (c *Collector) ObserveEvaluate(kind diag.Kind, d time.Duration) {
	if !c.Enabled() {
		return
	}
	c.engine.observe(c.engine.evaluateTotal, c.engine.evaluateDuration, kind, d)
}

// ObserveStringify records one stringify call.
func (c *Collector) ObserveStringify(kind diag.Kind) {
	if !c.Enabled() {
		return
	}
	c.engine.stringifyTotal.WithLabelValues(outcome(kind), kindLabel(kind)).Inc()
}

// SetLiveHandles publishes the number of live handles in a table.
func (c *Collector) SetLiveHandles(table string, n int) {
	if !c.Enabled() {
		return
	}
	c.engine.liveHandles.WithLabelValues(table).Set(float64(n))
}

// RecordCacheHit counts a compile cache hit.
func (c *Collector) RecordCacheHit() {
	if !c.Enabled() {
		return
	}
	c.cache.hitsTotal.Inc()
}

// RecordCacheMiss counts a compile cache miss.
func (c *Collector) RecordCacheMiss() {
	if !c.Enabled() {
		return
	}
	c.cache.missesTotal.Inc()
}

// RecordCacheEviction counts an entry pushed out of the compile cache.
func (c *Collector) RecordCacheEviction() {
	if !c.Enabled() {
		return
	}
	c.cache.evictionsTotal.Inc()
}

// SetCacheEntries publishes the current compile cache size.
func (c *Collector) SetCacheEntries(n int) {
	if !c.Enabled() {
		return
	}
	c.cache.entries.Set(float64(n))
}

// ObserveHTTPRequest records one served request.
func (c *Collector) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if !c.Enabled() {
		return
	}
	c.http.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.http.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func outcome(kind diag.Kind) string {
	if kind == diag.KindNone {
		return OutcomeOK
	}
	return OutcomeError
}

func kindLabel(kind diag.Kind) string {
	if kind == diag.KindNone {
		return "none"
	}
	return kind.String()
}
