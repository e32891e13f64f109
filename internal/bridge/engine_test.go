package bridge

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/handlestore"
	"github.com/specialistvlad/exprbridge/internal/metrics"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func mustTake(t *testing.T, e *Engine, src string, names ...string) ExpressionHandle {
	t.Helper()
	out := e.Compile(ctx, src, names)
	view, err := e.CompileOutcome(out)
	require.NoError(t, err)
	require.False(t, view.Diagnostic.IsError, "compile %q: %s", src, view.Diagnostic)
	h, err := e.TakeCompiledExpression(out)
	require.NoError(t, err)
	require.False(t, h.IsNull())
	return h
}

func evaluate(t *testing.T, e *Engine, h ExpressionHandle, values ...string) (string, diag.Diagnostic) {
	t.Helper()
	out := e.Evaluate(ctx, values, h)
	view, err := e.EvaluateOutcome(out)
	require.NoError(t, err)
	var text string
	if !view.Result.IsNull() {
		text, err = e.Text(view.Result)
		require.NoError(t, err)
	}
	require.NoError(t, e.ReleaseEvaluateOutcome(out))
	return text, view.Diagnostic
}

func TestEngine_ScenarioA(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	e := New()
	h := mustTake(t, e, "a + b", "a", "b")

	// --- Act ---
	got, d := evaluate(t, e, h, "1", "2")

	// --- Assert ---
	require.False(t, d.IsError)
	require.Equal(t, "3", got)
	require.NoError(t, e.ReleaseCompiledExpression(h))
	require.Zero(t, e.Live().Total(), "every handle released: %s", e.Live())
}

func TestEngine_CompileOutcomeHoldsExactlyOneVariant(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		src   string
		names []string
		kind  diag.Kind
		span  diag.Span
	}{
		{"success", "a + b", []string{"a", "b"}, diag.KindNone, diag.Span{}},
		{"scenario B unbound", "a + b", []string{"a"}, diag.KindUnboundIdentifier, diag.Span{Start: 4, End: 5}},
		{"scenario D duplicate", "a + b", []string{"a", "b", "a"}, diag.KindDuplicateInputName, diag.Span{}},
		{"syntax", "a +", []string{"a"}, diag.KindSyntax, diag.Span{Start: 3, End: 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := New()

			out := e.Compile(ctx, tc.src, tc.names)
			view, err := e.CompileOutcome(out)

			require.NoError(t, err)
			require.NotEqual(t, view.Diagnostic.IsError, !view.Result.IsNull())
			require.Equal(t, tc.kind, view.Diagnostic.Kind)
			if tc.kind == diag.KindSyntax {
				require.LessOrEqual(t, view.Diagnostic.Span.Start, view.Diagnostic.Span.End)
			} else {
				require.Equal(t, tc.span, view.Diagnostic.Span)
			}
			require.NoError(t, e.ReleaseCompileOutcome(out))
			require.Zero(t, e.Live().Total())
		})
	}
}

func TestEngine_ScenarioC(t *testing.T) {
	t.Parallel()

	e := New()
	h := mustTake(t, e, "a + b", "a", "b")

	got, d := evaluate(t, e, h, "x", "2")

	require.Empty(t, got)
	require.True(t, d.IsError)
	require.Equal(t, diag.KindTypeCoercion, d.Kind)
	require.NoError(t, e.ReleaseCompiledExpression(h))
}

func TestEngine_ArityMismatchNeverCrashes(t *testing.T) {
	t.Parallel()

	e := New()
	h := mustTake(t, e, "a + b", "a", "b")

	for _, values := range [][]string{nil, {"1"}, {"1", "2", "3"}} {
		_, d := evaluate(t, e, h, values...)
		require.Equal(t, diag.KindArityMismatch, d.Kind)
		require.Equal(t, diag.Span{}, d.Span)
	}
}

func TestEngine_TakeNullReturnsNull(t *testing.T) {
	t.Parallel()

	e := New()

	h, err := e.TakeCompiledExpression(0)

	require.NoError(t, err)
	require.True(t, h.IsNull())
}

func TestEngine_TakeFromFailedOutcomeConsumesIt(t *testing.T) {
	t.Parallel()

	e := New()
	out := e.Compile(ctx, "a + b", []string{"a"})

	h, err := e.TakeCompiledExpression(out)

	require.NoError(t, err)
	require.True(t, h.IsNull())
	require.Zero(t, e.Live().Total())
	_, err = e.CompileOutcome(out)
	require.ErrorIs(t, err, handlestore.ErrStaleHandle)
}

func TestEngine_ExtractedHandleOutlivesOutcome(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	e := New()
	out := e.Compile(ctx, "a * 2", []string{"a"})
	h, err := e.TakeCompiledExpression(out)
	require.NoError(t, err)

	// --- Act ---
	releaseErr := e.ReleaseCompileOutcome(out)

	// --- Assert ---
	require.ErrorIs(t, releaseErr, handlestore.ErrStaleHandle, "outcome was consumed by take")
	got, d := evaluate(t, e, h, "21")
	require.False(t, d.IsError)
	require.Equal(t, "42", got)
	require.NoError(t, e.ReleaseCompiledExpression(h))
	require.ErrorIs(t, e.ReleaseCompiledExpression(h), handlestore.ErrStaleHandle)
}

func TestEngine_ReleaseCompileOutcomeWithoutTakeFreesExpression(t *testing.T) {
	t.Parallel()

	e := New()
	out := e.Compile(ctx, "1", nil)
	view, err := e.CompileOutcome(out)
	require.NoError(t, err)

	require.NoError(t, e.ReleaseCompileOutcome(out))

	require.Zero(t, e.Live().Total())
	_, err = e.Expression(view.Result)
	require.ErrorIs(t, err, handlestore.ErrStaleHandle)
}

func TestEngine_UseAfterReleaseFailsFast(t *testing.T) {
	t.Parallel()

	e := New()
	h := mustTake(t, e, "a", "a")
	require.NoError(t, e.ReleaseCompiledExpression(h))

	_, d := evaluate(t, e, h, "1")
	require.Equal(t, diag.KindInvalidHandle, d.Kind)

	_, err := e.Stringify(h)
	require.ErrorIs(t, err, handlestore.ErrStaleHandle)

	out := e.Evaluate(ctx, []string{"1"}, mustTake(t, e, "a", "a"))
	require.NoError(t, e.ReleaseEvaluateOutcome(out))
	require.ErrorIs(t, e.ReleaseEvaluateOutcome(out), handlestore.ErrStaleHandle)
}

func TestEngine_StringifyRoundTrip(t *testing.T) {
	t.Parallel()

	e := New()
	h := mustTake(t, e, "(a+b)*c", "a", "b", "c")

	th, err := e.Stringify(h)
	require.NoError(t, err)
	text, err := e.Text(th)
	require.NoError(t, err)
	require.NoError(t, e.ReleaseText(th))
	require.ErrorIs(t, e.ReleaseText(th), handlestore.ErrStaleHandle)

	round := mustTake(t, e, text, "a", "b", "c")
	want, _ := evaluate(t, e, h, "1", "2", "3")
	got, _ := evaluate(t, e, round, "1", "2", "3")
	require.Equal(t, "9", want)
	require.Equal(t, want, got)
}

func TestEngine_EvaluatesTwiceIdentically(t *testing.T) {
	t.Parallel()

	e := New()
	h := mustTake(t, e, `format("%s=%d", a, b)`, "a", "b")

	first, _ := evaluate(t, e, h, "k", "7")
	second, _ := evaluate(t, e, h, "k", "7")

	require.Equal(t, `"k=7"`, first)
	require.Equal(t, first, second)
}

func TestEngine_ConcurrentEvaluateAndRelease(t *testing.T) {
	t.Parallel()

	e := New()
	h := mustTake(t, e, "a + b", "a", "b")

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := e.Evaluate(ctx, []string{"20", "22"}, h)
			_ = e.ReleaseEvaluateOutcome(out)
		}()
	}
	wg.Wait()

	require.NoError(t, e.ReleaseCompiledExpression(h))
	require.Zero(t, e.Live().Total())
}

func TestEngine_PublishesMetrics(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	collector := metrics.NewCollector(config.Default().Metrics, nil)
	e := New(WithMetrics(collector), WithMaxExpressionBytes(16))

	// --- Act ---
	ok := e.Compile(ctx, "1 + 1", nil)
	bad := e.Compile(ctx, "1 + 1 + 1 + 1 + 1 + 1", nil)

	// --- Assert ---
	expected := `
# HELP exprbridge_engine_live_handles Number of handles currently owned by callers
# TYPE exprbridge_engine_live_handles gauge
exprbridge_engine_live_handles{table="compile_outcome"} 2
exprbridge_engine_live_handles{table="evaluate_outcome"} 0
exprbridge_engine_live_handles{table="expression"} 1
exprbridge_engine_live_handles{table="text"} 0
`
	require.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "exprbridge_engine_live_handles"))
	require.NoError(t, e.ReleaseCompileOutcome(ok))
	require.NoError(t, e.ReleaseCompileOutcome(bad))
}
