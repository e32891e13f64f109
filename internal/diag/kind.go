package diag

import "fmt"

// Kind classifies an engine failure.
type Kind uint32

const (
	// KindNone marks the absence of a failure.
	KindNone Kind = iota
	KindSyntax
	KindUnboundIdentifier
	KindDuplicateInputName
	KindArityMismatch
	KindTypeCoercion
	KindRuntimeEvaluation
	// KindInternal marks a recovered panic or an unclassified Go error.
	KindInternal
	// KindInvalidHandle marks use of a released or unknown handle.
	KindInvalidHandle
)

var kindNames = map[Kind]string{
	KindNone:               "None",
	KindSyntax:             "SyntaxError",
	KindUnboundIdentifier:  "UnboundIdentifierError",
	KindDuplicateInputName: "DuplicateInputNameError",
	KindArityMismatch:      "ArityMismatchError",
	KindTypeCoercion:       "TypeCoercionError",
	KindRuntimeEvaluation:  "RuntimeEvaluationError",
	KindInternal:           "InternalError",
	KindInvalidHandle:      "InvalidHandleError",
}

// String returns the taxonomy name of the kind, e.g. "SyntaxError".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// MarshalText encodes the kind by name so wire payloads stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its taxonomy name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind %q", string(text))
}

// IsCompileKind reports whether failures of this kind are produced by the
// compile step.
func (k Kind) IsCompileKind() bool {
	switch k {
	case KindSyntax, KindUnboundIdentifier, KindDuplicateInputName:
		return true
	}
	return false
}
