package ctyconv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestDecodeInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  cty.Value
	}{
		{"integer", "1", cty.NumberIntVal(1)},
		{"padded integer", " 2 ", cty.NumberIntVal(2)},
		{"bool", "true", cty.True},
		{"json string", `"x"`, cty.StringVal("x")},
		{"bare word falls back to string", "x", cty.StringVal("x")},
		{"empty text is empty string", "", cty.StringVal("")},
		{"broken json falls back to string", `{"a":`, cty.StringVal(`{"a":`)},
		{"null", "null", cty.NullVal(cty.DynamicPseudoType)},
		{"object", `{"value":2}`, cty.ObjectVal(map[string]cty.Value{"value": cty.NumberIntVal(2)})},
		{"array", `[1,"a"]`, cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a")})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DecodeInput(tc.input)
			require.True(t, tc.want.RawEquals(got), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestEncodeResult(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		val  cty.Value
		want string
	}{
		{"integer", cty.NumberIntVal(3), "3"},
		{"float", cty.NumberFloatVal(1.5), "1.5"},
		{"string", cty.StringVal("x"), `"x"`},
		{"bool", cty.False, "false"},
		{"null", cty.NullVal(cty.DynamicPseudoType), "null"},
		{"tuple with untyped null", cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NullVal(cty.DynamicPseudoType)}), "[1,null]"},
		{"object", cty.ObjectVal(map[string]cty.Value{"a": cty.StringVal("b")}), `{"a":"b"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := EncodeResult(tc.val)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeResult_RejectsNonFinite(t *testing.T) {
	t.Parallel()

	inf := cty.NumberVal(new(big.Float).SetInf(false))

	_, err := EncodeResult(inf)
	require.ErrorIs(t, err, ErrNonFinite)

	_, err = EncodeResult(cty.TupleVal([]cty.Value{cty.NumberIntVal(1), inf}))
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestEncodeResult_RejectsUnknown(t *testing.T) {
	t.Parallel()

	_, err := EncodeResult(cty.UnknownVal(cty.Number))
	require.Error(t, err)
}
