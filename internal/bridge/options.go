package bridge

import (
	"log/slog"

	"github.com/specialistvlad/exprbridge/internal/metrics"
	"github.com/zclconf/go-cty/cty/function"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for every engine operation. Without it the
// logger is taken from each call's context.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics attaches a collector. A nil collector records nothing.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

// WithFunctions replaces the function table. The default is the full
// registry from the modules package.
func WithFunctions(fns map[string]function.Function) Option {
	return func(e *Engine) {
		e.functions = fns
	}
}

// WithMaxExpressionBytes rejects longer expressions at compile time.
func WithMaxExpressionBytes(n int) Option {
	return func(e *Engine) {
		e.maxBytes = n
	}
}
