package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/specialistvlad/exprbridge/internal/compiler"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/evaluator"
	"github.com/specialistvlad/exprbridge/internal/handlestore"
	"github.com/specialistvlad/exprbridge/internal/metrics"
	"github.com/specialistvlad/exprbridge/modules"
	"github.com/zclconf/go-cty/cty/function"
)

// Table names, used in errors and as the live_handles metric label.
const (
	TableExpression      = "expression"
	TableCompileOutcome  = "compile_outcome"
	TableEvaluateOutcome = "evaluate_outcome"
	TableText            = "text"
)

type compileRecord struct {
	diagnostic diag.Diagnostic
	result     ExpressionHandle
}

type evaluateRecord struct {
	diagnostic diag.Diagnostic
	result     TextHandle
}

// Engine owns every handle it issues. It is safe for concurrent use.
type Engine struct {
	logger    *slog.Logger
	metrics   *metrics.Collector
	functions map[string]function.Function
	maxBytes  int

	expressions *handlestore.Table[*compiler.Expression]
	compiles    *handlestore.Table[compileRecord]
	evaluations *handlestore.Table[evaluateRecord]
	texts       *handlestore.Table[string]
}

// New creates an Engine with empty handle tables.
func New(opts ...Option) *Engine {
	e := &Engine{
		expressions: handlestore.New[*compiler.Expression](TableExpression),
		compiles:    handlestore.New[compileRecord](TableCompileOutcome),
		evaluations: handlestore.New[evaluateRecord](TableEvaluateOutcome),
		texts:       handlestore.New[string](TableText),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.functions == nil {
		e.functions = modules.NewRegistry().Functions()
	}
	return e
}

// Compile compiles src against names and returns the outcome record. It
// never returns a null handle.
func (e *Engine) Compile(ctx context.Context, src string, names []string) CompileOutcomeHandle {
	ctx = e.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	var rec compileRecord
	expr, err := e.compile(ctx, src, names)
	if err != nil {
		rec.diagnostic = diag.FromError(err)
		logger.Debug("Compile failed.", "kind", rec.diagnostic.Kind, "error", err)
	} else {
		rec.result = ExpressionHandle(e.expressions.Insert(expr))
	}
	h := CompileOutcomeHandle(e.compiles.Insert(rec))

	e.metrics.ObserveCompile(rec.diagnostic.Kind, time.Since(start))
	e.publish()
	return h
}

func (e *Engine) compile(ctx context.Context, src string, names []string) (expr *compiler.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Error("Recovered from panic during compile.", "panic", r)
			expr, err = nil, diag.Newf(diag.KindInternal, "compile panicked: %v", r)
		}
	}()
	return compiler.Compile(ctx, src, names,
		compiler.WithFunctions(e.functions),
		compiler.WithMaxBytes(e.maxBytes),
	)
}

// CompileOutcome returns a copy of the record behind h.
func (e *Engine) CompileOutcome(h CompileOutcomeHandle) (CompileOutcome, error) {
	rec, err := e.compiles.Get(handlestore.Handle(h))
	if err != nil {
		return CompileOutcome{}, err
	}
	return CompileOutcome{Diagnostic: rec.diagnostic, Result: rec.result}, nil
}

// TakeCompiledExpression moves the compiled expression out of the outcome
// and destroys the outcome. A null outcome, or an outcome holding a
// diagnostic, yields the null handle; the outcome is destroyed either way.
func (e *Engine) TakeCompiledExpression(h CompileOutcomeHandle) (ExpressionHandle, error) {
	if h.IsNull() {
		return 0, nil
	}
	rec, err := e.compiles.Take(handlestore.Handle(h))
	if err != nil {
		return 0, err
	}
	e.publish()
	return rec.result, nil
}

// ReleaseCompileOutcome destroys the outcome and any compiled expression
// still inside it. Releasing the null handle is a no-op.
func (e *Engine) ReleaseCompileOutcome(h CompileOutcomeHandle) error {
	if h.IsNull() {
		return nil
	}
	rec, err := e.compiles.Take(handlestore.Handle(h))
	if err != nil {
		return err
	}
	defer e.publish()
	if !rec.result.IsNull() {
		return e.expressions.Release(handlestore.Handle(rec.result))
	}
	return nil
}

// ReleaseCompiledExpression destroys a compiled expression. Outstanding
// evaluate outcomes are unaffected.
func (e *Engine) ReleaseCompiledExpression(h ExpressionHandle) error {
	if h.IsNull() {
		return nil
	}
	if err := e.expressions.Release(handlestore.Handle(h)); err != nil {
		return err
	}
	e.publish()
	return nil
}

// Expression returns the compiled expression behind h. The caller must not
// use it after releasing h through the engine.
func (e *Engine) Expression(h ExpressionHandle) (*compiler.Expression, error) {
	return e.expressions.Get(handlestore.Handle(h))
}

// Evaluate runs the expression behind h against values. It never returns a
// null handle: a stale expression handle yields an InvalidHandle diagnostic.
func (e *Engine) Evaluate(ctx context.Context, values []string, h ExpressionHandle) EvaluateOutcomeHandle {
	ctx = e.withLogger(ctx)
	start := time.Now()

	var rec evaluateRecord
	text, err := e.evaluate(ctx, values, h)
	if err != nil {
		rec.diagnostic = diag.FromError(err)
	} else {
		rec.result = TextHandle(e.texts.Insert(text))
	}
	out := EvaluateOutcomeHandle(e.evaluations.Insert(rec))

	e.metrics.ObserveEvaluate(rec.diagnostic.Kind, time.Since(start))
	e.publish()
	return out
}

func (e *Engine) evaluate(ctx context.Context, values []string, h ExpressionHandle) (string, error) {
	expr, err := e.expressions.Get(handlestore.Handle(h))
	if err != nil {
		return "", diag.Newf(diag.KindInvalidHandle, "cannot evaluate: %v", err).WithCause(err)
	}
	return evaluator.Evaluate(ctx, expr, values)
}

// EvaluateOutcome returns a copy of the record behind h.
func (e *Engine) EvaluateOutcome(h EvaluateOutcomeHandle) (EvaluateOutcome, error) {
	rec, err := e.evaluations.Get(handlestore.Handle(h))
	if err != nil {
		return EvaluateOutcome{}, err
	}
	return EvaluateOutcome{Diagnostic: rec.diagnostic, Result: rec.result}, nil
}

// ReleaseEvaluateOutcome destroys the outcome together with its result text.
func (e *Engine) ReleaseEvaluateOutcome(h EvaluateOutcomeHandle) error {
	if h.IsNull() {
		return nil
	}
	rec, err := e.evaluations.Take(handlestore.Handle(h))
	if err != nil {
		return err
	}
	defer e.publish()
	if !rec.result.IsNull() {
		return e.texts.Release(handlestore.Handle(rec.result))
	}
	return nil
}

// Stringify renders the expression behind h in canonical form. The returned
// text is owned by the caller and released with ReleaseText.
func (e *Engine) Stringify(h ExpressionHandle) (TextHandle, error) {
	expr, err := e.expressions.Get(handlestore.Handle(h))
	if err != nil {
		e.metrics.ObserveStringify(diag.KindInvalidHandle)
		return 0, err
	}
	t := TextHandle(e.texts.Insert(expr.String()))
	e.metrics.ObserveStringify(diag.KindNone)
	e.publish()
	return t, nil
}

// Text returns a copy of the text behind h.
func (e *Engine) Text(h TextHandle) (string, error) {
	return e.texts.Get(handlestore.Handle(h))
}

// ReleaseText destroys engine-allocated text. Releasing the null handle is
// a no-op.
func (e *Engine) ReleaseText(h TextHandle) error {
	if h.IsNull() {
		return nil
	}
	if err := e.texts.Release(handlestore.Handle(h)); err != nil {
		return err
	}
	e.publish()
	return nil
}

// Live returns the number of live handles in each table.
func (e *Engine) Live() Stats {
	return Stats{
		Expressions:      e.expressions.Len(),
		CompileOutcomes:  e.compiles.Len(),
		EvaluateOutcomes: e.evaluations.Len(),
		Texts:            e.texts.Len(),
	}
}

func (e *Engine) withLogger(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.logger != nil {
		ctx = ctxlog.WithLogger(ctx, e.logger)
	}
	return ctx
}

func (e *Engine) publish() {
	if !e.metrics.Enabled() {
		return
	}
	live := e.Live()
	e.metrics.SetLiveHandles(TableExpression, live.Expressions)
	e.metrics.SetLiveHandles(TableCompileOutcome, live.CompileOutcomes)
	e.metrics.SetLiveHandles(TableEvaluateOutcome, live.EvaluateOutcomes)
	e.metrics.SetLiveHandles(TableText, live.Texts)
}
