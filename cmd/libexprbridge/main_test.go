package main

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/stretchr/testify/require"
)

// The tests share the package engine and record table, so none of them run
// in parallel.

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger
	logger = ctxlog.New("debug", "text", &buf)
	t.Cleanup(func() { logger = prev })
	return &buf
}

func requireBalanced(t *testing.T, records0, live0 int) {
	t.Helper()
	require.Equal(t, records0, records.len(), "record table")
	require.Equal(t, live0, engine.Live().Total(), "engine handles: %s", engine.Live())
}

func TestExports_ScenarioA(t *testing.T) {
	// --- Arrange ---
	records0, live0 := records.len(), engine.Live().Total()

	// --- Act ---
	co := compileStrings("a + b", []string{"a", "b"})
	d, _ := readCompileOutcome(co)
	h := exprbridge_take_compiled_expression(co)
	eo := evaluateStrings([]string{"1", "2"}, h)
	ed, got, ok := readEvaluateOutcome(eo)
	exprbridge_release_evaluate_outcome(eo)
	text := exprbridge_stringify(h)
	canonical, textOK := readText(text)
	exprbridge_release_text(text)
	exprbridge_release_compiled_expression(h)

	// --- Assert ---
	require.False(t, d.IsError, "compile: %s", d)
	require.NotZero(t, h)
	require.False(t, ed.IsError, "evaluate: %s", ed)
	require.True(t, ok)
	require.Equal(t, "3", got)
	require.True(t, textOK)
	require.Equal(t, "a + b", canonical)
	requireBalanced(t, records0, live0)
}

func TestExports_CompileFailure(t *testing.T) {
	testCases := []struct {
		name  string
		expr  string
		names []string
		want  diag.Diagnostic
	}{
		{
			name:  "unbound identifier",
			expr:  "a + b",
			names: []string{"a"},
			want:  diag.Diagnostic{IsError: true, Kind: diag.KindUnboundIdentifier, Span: diag.Span{Start: 4, End: 5}},
		},
		{
			name:  "duplicate input name",
			expr:  "a + b",
			names: []string{"a", "b", "a"},
			want:  diag.Diagnostic{IsError: true, Kind: diag.KindDuplicateInputName},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			records0, live0 := records.len(), engine.Live().Total()

			// --- Act ---
			co := compileStrings(tc.expr, tc.names)
			d, h := readCompileOutcome(co)
			exprbridge_release_compile_outcome(co)

			// --- Assert ---
			require.Zero(t, h)
			require.NotEmpty(t, d.Message)
			require.Equal(t, tc.want.IsError, d.IsError)
			require.Equal(t, tc.want.Kind, d.Kind)
			if tc.want.Span != (diag.Span{}) {
				require.Equal(t, tc.want.Span, d.Span)
			}
			requireBalanced(t, records0, live0)
		})
	}
}

func TestExports_EvaluateFailureCarriesNoResult(t *testing.T) {
	// --- Arrange ---
	records0, live0 := records.len(), engine.Live().Total()
	co := compileStrings("a + b", []string{"a", "b"})
	h := exprbridge_take_compiled_expression(co)
	require.NotZero(t, h)

	// --- Act ---
	coerce := evaluateStrings([]string{"x", "2"}, h)
	cd, _, cok := readEvaluateOutcome(coerce)
	exprbridge_release_evaluate_outcome(coerce)
	arity := evaluateStrings([]string{"1"}, h)
	ad, _, aok := readEvaluateOutcome(arity)
	exprbridge_release_evaluate_outcome(arity)
	exprbridge_release_compiled_expression(h)

	// --- Assert ---
	require.Equal(t, diag.KindTypeCoercion, cd.Kind)
	require.False(t, cok)
	require.Equal(t, diag.KindArityMismatch, ad.Kind)
	require.False(t, aok)
	requireBalanced(t, records0, live0)
}

func TestExports_DoubleReleaseIsLoggedNoOp(t *testing.T) {
	// --- Arrange ---
	buf := captureLog(t)
	records0, live0 := records.len(), engine.Live().Total()
	co := compileStrings("a", []string{"a"})
	h := exprbridge_take_compiled_expression(co)
	eo := evaluateStrings([]string{"1"}, h)
	text := exprbridge_stringify(h)
	failed := compileStrings("a +", []string{"a"})
	exprbridge_release_evaluate_outcome(eo)
	exprbridge_release_text(text)
	exprbridge_release_compile_outcome(failed)
	exprbridge_release_compiled_expression(h)
	requireBalanced(t, records0, live0)
	buf.Reset()

	// --- Act ---
	exprbridge_release_evaluate_outcome(eo)
	exprbridge_release_text(text)
	exprbridge_release_compile_outcome(failed)
	exprbridge_release_compiled_expression(h)

	// --- Assert ---
	logged := buf.String()
	require.Contains(t, logged, "exprbridge_release_evaluate_outcome: unknown or already released outcome.")
	require.Contains(t, logged, "exprbridge_release_text: unknown or already released text.")
	require.Contains(t, logged, "exprbridge_release_compile_outcome: unknown or already released outcome.")
	require.Contains(t, logged, "exprbridge_release_compiled_expression failed.")
	requireBalanced(t, records0, live0)
}

func TestExports_TakeAfterTakeReturnsNull(t *testing.T) {
	// --- Arrange ---
	buf := captureLog(t)
	records0, live0 := records.len(), engine.Live().Total()
	co := compileStrings("a", []string{"a"})
	h := exprbridge_take_compiled_expression(co)
	require.NotZero(t, h)

	// --- Act ---
	again := exprbridge_take_compiled_expression(co)

	// --- Assert ---
	require.Zero(t, again)
	require.Contains(t, buf.String(), "exprbridge_take_compiled_expression: unknown or already released outcome.")
	exprbridge_release_compiled_expression(h)
	requireBalanced(t, records0, live0)
}

func TestExports_NullArguments(t *testing.T) {
	// --- Arrange ---
	buf := captureLog(t)
	records0, live0 := records.len(), engine.Live().Total()

	// --- Act ---
	h := exprbridge_take_compiled_expression(nil)
	exprbridge_release_compile_outcome(nil)
	exprbridge_release_evaluate_outcome(nil)
	exprbridge_release_text(nil)

	// --- Assert ---
	require.Zero(t, h)
	require.Empty(t, buf.String())
	requireBalanced(t, records0, live0)
}

func TestExports_StringifyReleasedHandle(t *testing.T) {
	// --- Arrange ---
	buf := captureLog(t)
	co := compileStrings("a", []string{"a"})
	h := exprbridge_take_compiled_expression(co)
	exprbridge_release_compiled_expression(h)
	records0, live0 := records.len(), engine.Live().Total()

	// --- Act ---
	text := exprbridge_stringify(h)

	// --- Assert ---
	_, ok := readText(text)
	require.False(t, ok)
	require.Contains(t, buf.String(), "exprbridge_stringify failed.")
	requireBalanced(t, records0, live0)
}
