package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"
)

func TestFromError_Nil(t *testing.T) {
	t.Parallel()
	require.Equal(t, Diagnostic{}, FromError(nil))
	require.NoError(t, FromError(nil).Err())
}

func TestFromError_EngineError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	err := Newf(KindUnboundIdentifier, "unknown variable %q", "b").WithSpan(Span{Start: 4, End: 5})

	// --- Act ---
	d := FromError(fmt.Errorf("compile: %w", err))

	// --- Assert ---
	require.True(t, d.IsError)
	require.Equal(t, KindUnboundIdentifier, d.Kind)
	require.Equal(t, Span{Start: 4, End: 5}, d.Span)
	require.Equal(t, `UnboundIdentifierError: unknown variable "b"`, d.Message)
	require.Equal(t, `UnboundIdentifierError: unknown variable "b" at 4..5`, d.String())
}

func TestFromError_ForeignErrorIsInternal(t *testing.T) {
	t.Parallel()

	d := FromError(errors.New("boom"))

	require.True(t, d.IsError)
	require.Equal(t, KindInternal, d.Kind)
	require.Contains(t, d.Message, "boom")
}

func TestDiagnostic_ErrRoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	orig := Newf(KindTypeCoercion, "cannot convert %q to number", "x").WithSpan(Span{Start: 0, End: 1})

	// --- Act ---
	back := FromError(orig).Err()

	// --- Assert ---
	var de *Error
	require.ErrorAs(t, back, &de)
	require.Equal(t, orig.Kind, de.Kind)
	require.Equal(t, orig.Message, de.Message)
	require.Equal(t, *orig.Span, *de.Span)
	require.ErrorIs(t, back, &Error{Kind: KindTypeCoercion})
	require.NotErrorIs(t, back, &Error{Kind: KindSyntax})
}

func TestFromHCL(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	subject := hcl.Range{
		Start: hcl.Pos{Byte: 2, Line: 1, Column: 3},
		End:   hcl.Pos{Byte: 7, Line: 1, Column: 8},
	}
	diags := hcl.Diagnostics{
		{Severity: hcl.DiagWarning, Summary: "ignored"},
		{Severity: hcl.DiagError, Summary: "Invalid expression", Detail: "Expected the start of an expression.", Subject: &subject},
	}

	// --- Act ---
	err := FromHCL(KindSyntax, diags)

	// --- Assert ---
	require.NotNil(t, err)
	require.Equal(t, KindSyntax, err.Kind)
	require.Equal(t, "Invalid expression: Expected the start of an expression.", err.Message)
	require.Equal(t, &Span{Start: 2, End: 7}, err.Span)
	require.Nil(t, FromHCL(KindSyntax, hcl.Diagnostics{{Severity: hcl.DiagWarning}}))
}

func TestSpanFromRange_NeverInverted(t *testing.T) {
	t.Parallel()

	s := SpanFromRange(hcl.Range{Start: hcl.Pos{Byte: 9}, End: hcl.Pos{Byte: 3}})

	require.Equal(t, Span{Start: 9, End: 9}, s)
}

func TestKind_TextEncoding(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Diagnostic{Message: "m", IsError: true, Kind: KindArityMismatch})
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"m","is_error":true,"span":{"start":0,"end":0},"kind":"ArityMismatchError"}`, string(raw))

	var d Diagnostic
	require.NoError(t, json.Unmarshal(raw, &d))
	require.Equal(t, KindArityMismatch, d.Kind)

	var k Kind
	require.Error(t, k.UnmarshalText([]byte("NotAKind")))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindNone, KindOf(nil))
	require.Equal(t, KindInternal, KindOf(errors.New("x")))
	require.Equal(t, KindArityMismatch, KindOf(Newf(KindArityMismatch, "n")))
	require.True(t, KindSyntax.IsCompileKind())
	require.False(t, KindRuntimeEvaluation.IsCompileKind())
}
