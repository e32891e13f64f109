package compiler

import (
	"slices"
	"sync"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty/function"
)

// Expression is a compiled expression. It is immutable after Compile
// returns and safe for concurrent use.
type Expression struct {
	source    string
	names     []string
	index     map[string]int
	syntax    hclsyntax.Expression
	functions map[string]function.Function

	canonical func() string
	called    func() []string
	inputs    func() []string
}

func newExpression(src string, names []string, index map[string]int, syntax hclsyntax.Expression, fns map[string]function.Function) *Expression {
	e := &Expression{
		source:    src,
		names:     slices.Clone(names),
		index:     index,
		syntax:    syntax,
		functions: fns,
	}
	e.canonical = sync.OnceValue(func() string { return format([]byte(e.source), e.syntax) })
	e.called = sync.OnceValue(func() []string { return calledFunctions(e.syntax) })
	e.inputs = sync.OnceValue(func() []string { return referencedInputs(e.syntax) })
	return e
}

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string {
	return e.source
}

// InputNames returns a copy of the ordered input names.
func (e *Expression) InputNames() []string {
	return slices.Clone(e.names)
}

// Arity is the number of input values Evaluate expects.
func (e *Expression) Arity() int {
	return len(e.names)
}

// Slot returns the position of the named input.
func (e *Expression) Slot(name string) (int, bool) {
	i, ok := e.index[name]
	return i, ok
}

// Syntax returns the parsed form. Callers must treat it as read-only.
func (e *Expression) Syntax() hclsyntax.Expression {
	return e.syntax
}

// Functions returns the function table the expression was compiled
// against. Callers must treat it as read-only.
func (e *Expression) Functions() map[string]function.Function {
	return e.functions
}

// CalledFunctions returns the sorted, unique names of functions the
// expression calls.
func (e *Expression) CalledFunctions() []string {
	return slices.Clone(e.called())
}

// ReferencedInputs returns the sorted, unique input names the expression
// actually reads. Declared inputs may go unused.
func (e *Expression) ReferencedInputs() []string {
	return slices.Clone(e.inputs())
}

// String renders an equivalent expression in canonical form.
func (e *Expression) String() string {
	return e.canonical()
}
