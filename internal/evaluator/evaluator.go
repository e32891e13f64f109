package evaluator

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/exprbridge/internal/compiler"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/ctyconv"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/zclconf/go-cty/cty"
)

// coercionSummaries lists the HCL diagnostic summaries raised when an
// operand or argument cannot be converted to the type an operation needs.
var coercionSummaries = map[string]struct{}{
	"Invalid operand":                      {},
	"Invalid function argument":            {},
	"Incorrect condition type":             {},
	"Invalid template interpolation value": {},
	"Iteration over non-iterable value":    {},
}

// Evaluate runs expr against values, which are bound to the expression's
// input names by position, and returns the result as JSON text.
func Evaluate(ctx context.Context, expr *compiler.Expression, values []string) (string, error) {
	val, err := EvaluateValue(ctx, expr, values)
	if err != nil {
		return "", err
	}

	out, err := ctyconv.EncodeResult(val)
	if err != nil {
		msg := "result cannot be encoded as JSON"
		if errors.Is(err, ctyconv.ErrNonFinite) {
			msg = "result is not a finite number"
		}
		return "", diag.Newf(diag.KindRuntimeEvaluation, "%s: %v", msg, err).
			WithRange(expr.Syntax().Range()).
			WithCause(err)
	}

	ctxlog.FromContext(ctx).Debug("Expression evaluated.", "result_bytes", len(out))
	return out, nil
}

// EvaluateValue is Evaluate without the final JSON encoding.
func EvaluateValue(ctx context.Context, expr *compiler.Expression, values []string) (val cty.Value, err error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		return cty.NilVal, diag.Newf(diag.KindInvalidHandle, "no compiled expression")
	}
	if len(values) != expr.Arity() {
		return cty.NilVal, diag.Newf(diag.KindArityMismatch, "expected %d input values, got %d", expr.Arity(), len(values))
	}

	names := expr.InputNames()
	vars := make(map[string]cty.Value, len(names))
	for i, name := range names {
		if !utf8.ValidString(values[i]) {
			return cty.NilVal, diag.Newf(diag.KindTypeCoercion, "value for input %q is not valid UTF-8", name)
		}
		vars[name] = ctyconv.DecodeInput(values[i])
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic during evaluation.", "panic", r)
			val = cty.NilVal
			err = diag.Newf(diag.KindInternal, "evaluation panicked: %v", r)
		}
	}()

	evalCtx := &hcl.EvalContext{
		Variables: vars,
		Functions: expr.Functions(),
	}
	val, diags := expr.Syntax().Value(evalCtx)
	if diags.HasErrors() {
		err := classify(diags)
		logger.Debug("Expression evaluation failed.", "error", err)
		return cty.NilVal, err
	}
	return val, nil
}

// classify converts evaluation diagnostics into a TypeCoercion or
// RuntimeEvaluation error, positioned at the offending sub-expression.
func classify(diags hcl.Diagnostics) *diag.Error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		kind := diag.KindRuntimeEvaluation
		if _, ok := coercionSummaries[d.Summary]; ok {
			kind = diag.KindTypeCoercion
		}
		return diag.FromHCL(kind, hcl.Diagnostics{d})
	}
	return diag.Newf(diag.KindRuntimeEvaluation, "evaluation failed: %s", diags.Error())
}
