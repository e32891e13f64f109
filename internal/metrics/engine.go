package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/diag"
)

// EngineMetrics tracks compile, evaluate and stringify calls.
//
// Metrics:
//   - exprbridge_engine_compile_total{outcome,kind}
//   - exprbridge_engine_compile_duration_seconds{outcome}
//   - exprbridge_engine_evaluate_total{outcome,kind}
//   - exprbridge_engine_evaluate_duration_seconds{outcome}
//   - exprbridge_engine_stringify_total{outcome,kind}
//   - exprbridge_engine_live_handles{table}
type EngineMetrics struct {
	compileTotal     *prometheus.CounterVec
	compileDuration  *prometheus.HistogramVec
	evaluateTotal    *prometheus.CounterVec
	evaluateDuration *prometheus.HistogramVec
	stringifyTotal   *prometheus.CounterVec
	liveHandles      *prometheus.GaugeVec
}

// NewEngineMetrics creates and registers engine metrics.
func NewEngineMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *EngineMetrics {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, []string{"outcome", "kind"})
	}
	histogram := func(name, help string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
			Buckets:   cfg.DurationBuckets,
		}, []string{"outcome"})
	}

	em := &EngineMetrics{
		compileTotal:     counter("compile_total", "Total number of compile calls"),
		compileDuration:  histogram("compile_duration_seconds", "Compile call latency in seconds"),
		evaluateTotal:    counter("evaluate_total", "Total number of evaluate calls"),
		evaluateDuration: histogram("evaluate_duration_seconds", "Evaluate call latency in seconds"),
		stringifyTotal:   counter("stringify_total", "Total number of stringify calls"),
		liveHandles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "live_handles",
			Help:      "Number of handles currently owned by callers",
		}, []string{"table"}),
	}

	registry.MustRegister(
		em.compileTotal,
		em.compileDuration,
		em.evaluateTotal,
		em.evaluateDuration,
		em.stringifyTotal,
		em.liveHandles,
	)
	return em
}

func (em *EngineMetrics) observe(total *prometheus.CounterVec, duration *prometheus.HistogramVec, kind diag.Kind, d time.Duration) {
	o := outcome(kind)
	total.WithLabelValues(o, kindLabel(kind)).Inc()
	duration.WithLabelValues(o).Observe(d.Seconds())
}
