package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/exprbridge/internal/config"
)

// CacheMetrics tracks the compiled expression cache.
type CacheMetrics struct {
	hitsTotal      prometheus.Counter
	missesTotal    prometheus.Counter
	evictionsTotal prometheus.Counter
	entries        prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics.
func NewCacheMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}
	}
	cm := &CacheMetrics{
		hitsTotal:      prometheus.NewCounter(opts("cache_hits_total", "Total number of compile cache hits")),
		missesTotal:    prometheus.NewCounter(opts("cache_misses_total", "Total number of compile cache misses")),
		evictionsTotal: prometheus.NewCounter(opts("cache_evictions_total", "Total number of compile cache evictions")),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_entries",
			Help:      "Current number of compiled expressions in the cache",
		}),
	}
	registry.MustRegister(cm.hitsTotal, cm.missesTotal, cm.evictionsTotal, cm.entries)
	return cm
}
