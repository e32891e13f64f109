package compiler

import (
	"context"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/diag"
)

// filename labels source ranges in HCL diagnostics.
const filename = "expression"

// Compile parses src and binds it to the ordered input names. Failures are
// returned as *diag.Error.
func Compile(ctx context.Context, src string, names []string, opts ...Option) (*Expression, error) {
	logger := ctxlog.FromContext(ctx)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxBytes > 0 && len(src) > o.maxBytes {
		return nil, diag.Newf(diag.KindSyntax, "expression is %d bytes long, the limit is %d", len(src), o.maxBytes).
			WithSpan(diag.Span{Start: uint64(o.maxBytes), End: uint64(len(src))})
	}

	if i := invalidUTF8(src); i >= 0 {
		return nil, diag.Newf(diag.KindSyntax, "expression is not valid UTF-8").
			WithSpan(diag.Span{Start: uint64(i), End: uint64(i + 1)})
	}

	index, err := bindNames(names)
	if err != nil {
		logger.Debug("Rejected input names.", "error", err)
		return nil, err
	}

	syntax, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		err := diag.FromHCL(diag.KindSyntax, diags)
		logger.Debug("Expression failed to parse.", "error", err)
		return nil, err
	}

	if err := checkReferences(syntax, index); err != nil {
		logger.Debug("Expression references an unbound identifier.", "error", err)
		return nil, err
	}
	if err := checkCalls(syntax, o.functions); err != nil {
		logger.Debug("Expression has an invalid function call.", "error", err)
		return nil, err
	}

	checkDivisors(syntax)

	expr := newExpression(src, names, index, syntax, o.functions)
	logger.Debug("Expression compiled.", "inputs", len(names), "bytes", len(src))
	return expr, nil
}

// bindNames validates the declared input names and maps each to its slot.
func bindNames(names []string) (map[string]int, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if !utf8.ValidString(name) || !hclsyntax.ValidIdentifier(name) {
			return nil, diag.Newf(diag.KindSyntax, "input name %q at position %d is not a valid identifier", name, i)
		}
		if prev, dup := index[name]; dup {
			return nil, diag.Newf(diag.KindDuplicateInputName, "input name %q is declared at positions %d and %d", name, prev, i)
		}
		index[name] = i
	}
	return index, nil
}

// invalidUTF8 returns the byte offset of the first invalid UTF-8 sequence in
// s, or -1.
func invalidUTF8(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return i
			}
		}
	}
	return -1
}
