package wire

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/exprbridge/internal/cache"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/modules"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	compiles []diag.Kind
	evals    []diag.Kind
}

func (o *recordingObserver) ObserveCompile(kind diag.Kind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compiles = append(o.compiles, kind)
}

func (o *recordingObserver) ObserveEvaluate(kind diag.Kind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evals = append(o.evals, kind)
}

func newRunner(obs Observer) *Runner {
	return &Runner{
		Cache:     cache.New(8, nil),
		Functions: modules.NewRegistry().Functions(),
		Observer:  obs,
	}
}

func TestRunner_CompilesOnceEvaluatesEveryRow(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	obs := &recordingObserver{}
	r := newRunner(obs)
	req := Request{
		Expression: "a+b",
		Inputs:     []string{"a", "b"},
		Rows:       [][]string{{"1", "2"}, {"x", "2"}, {"1"}},
	}

	// --- Act ---
	resp := r.Run(context.Background(), req)

	// --- Assert ---
	require.False(t, resp.Compile.IsError)
	require.Equal(t, "a + b", resp.Canonical)
	require.Len(t, resp.Results, 3)
	require.Equal(t, Result{Result: "3"}, resp.Results[0])
	require.Equal(t, diag.KindTypeCoercion, resp.Results[1].Diagnostic.Kind)
	require.Empty(t, resp.Results[1].Result)
	require.Equal(t, diag.KindArityMismatch, resp.Results[2].Diagnostic.Kind)
	if diff := cmp.Diff([]diag.Kind{diag.KindNone}, obs.compiles); diff != "" {
		t.Errorf("compile observations mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, obs.evals, 3)
}

func TestRunner_CompileFailure(t *testing.T) {
	t.Parallel()

	r := newRunner(nil)

	resp := r.Run(context.Background(), Request{Expression: "a + b", Inputs: []string{"a"}, Rows: [][]string{{"1"}}})

	require.True(t, resp.Compile.IsError)
	require.Equal(t, diag.KindUnboundIdentifier, resp.Compile.Kind)
	require.Equal(t, diag.Span{Start: 4, End: 5}, resp.Compile.Span)
	require.Empty(t, resp.Canonical)
	require.Empty(t, resp.Results)
}

func TestRunner_UsesCache(t *testing.T) {
	t.Parallel()

	r := newRunner(nil)
	req := Request{Expression: "a * 2", Inputs: []string{"a"}, Rows: [][]string{{"4"}}}

	first := r.Run(context.Background(), req)
	second := r.Run(context.Background(), req)

	require.Equal(t, first, second)
	require.Equal(t, 1, r.Cache.Len())
}

func TestRunner_CachedExpressionNotReusedForDifferentRequest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := newRunner(nil)
	first := r.Run(context.Background(), Request{Expression: "a + b", Inputs: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}})
	require.False(t, first.Compile.IsError)

	// --- Act ---
	resp := r.Run(context.Background(), Request{Expression: "a + b\x00a", Inputs: []string{"b"}, Rows: [][]string{{"2"}}})

	// --- Assert ---
	require.True(t, resp.Compile.IsError)
	require.Equal(t, diag.KindSyntax, resp.Compile.Kind)
	require.Empty(t, resp.Results)
}

func TestRunner_ZeroValueWorks(t *testing.T) {
	t.Parallel()

	var r Runner

	resp := r.Run(context.Background(), Request{Expression: "1 + 1", Rows: [][]string{{}}})

	require.Equal(t, []Result{{Result: "2"}}, resp.Results)
}

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	req, err := DecodeRequest(strings.NewReader(`{"expression":"a","inputs":["a"],"rows":[["1"]]}`))
	require.NoError(t, err)
	require.Equal(t, Request{Expression: "a", Inputs: []string{"a"}, Rows: [][]string{{"1"}}}, req)

	_, err = DecodeRequest(strings.NewReader(`{"expr":"a"}`))
	require.ErrorContains(t, err, "invalid request")
}

func TestEncodeThenDecodeResponse(t *testing.T) {
	t.Parallel()

	resp := newRunner(nil).Run(context.Background(), Request{
		Expression: "a / b",
		Inputs:     []string{"a", "b"},
		Rows:       [][]string{{"1", "0"}},
	})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, resp))
	require.Contains(t, buf.String(), `"kind":"RuntimeEvaluationError"`)
	got, err := DecodeResponse(&buf)

	require.NoError(t, err)
	require.Equal(t, resp, got)
}
