package ctyconv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrNonFinite is returned when a result contains an infinite number, which
// has no JSON encoding.
var ErrNonFinite = errors.New("number is not finite")

// DecodeInput converts a textual input value into a cty.Value.
func DecodeInput(text string) cty.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "null" {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if trimmed == "" {
		return cty.StringVal(text)
	}

	raw := []byte(trimmed)
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.StringVal(text)
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.StringVal(text)
	}
	return v
}

// EncodeResult renders a result value as JSON text.
func EncodeResult(v cty.Value) (string, error) {
	v, _ = v.UnmarkDeep()
	if !v.IsWhollyKnown() {
		return "", errors.New("result is not fully known")
	}
	if v.IsNull() {
		return "null", nil
	}

	norm, err := cty.Transform(v, normalize)
	if err != nil {
		return "", err
	}
	raw, err := ctyjson.Marshal(norm, norm.Type())
	if err != nil {
		return "", fmt.Errorf("cannot encode result as JSON: %w", err)
	}
	return string(raw), nil
}

// normalize rejects non-finite numbers and gives untyped nulls a concrete
// type so the JSON encoder writes a bare null.
func normalize(_ cty.Path, v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		if v.Type() == cty.DynamicPseudoType {
			return cty.NullVal(cty.String), nil
		}
		return v, nil
	}
	if v.Type() == cty.Number && v.AsBigFloat().IsInf() {
		return v, ErrNonFinite
	}
	return v, nil
}
