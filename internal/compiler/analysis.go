package compiler

import (
	"slices"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/zclconf/go-cty/cty/function"
)

// checkReferences reports the first root identifier, by source position,
// that is not a declared input.
func checkReferences(expr hclsyntax.Expression, index map[string]int) error {
	var unbound []hcl.Traversal
	for _, traversal := range expr.Variables() {
		if _, ok := index[traversal.RootName()]; !ok {
			unbound = append(unbound, traversal)
		}
	}
	if len(unbound) == 0 {
		return nil
	}

	sort.SliceStable(unbound, func(i, j int) bool {
		return unbound[i][0].SourceRange().Start.Byte < unbound[j][0].SourceRange().Start.Byte
	})
	first := unbound[0]
	return diag.Newf(diag.KindUnboundIdentifier, "unknown identifier %q", first.RootName()).
		WithRange(first[0].SourceRange())
}

// checkCalls verifies that every call names a known function and passes an
// acceptable number of arguments. The first offending call in source order
// is reported.
func checkCalls(expr hclsyntax.Expression, functions map[string]function.Function) error {
	var failure *diag.Error
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if failure != nil {
			return nil
		}
		call, ok := node.(*hclsyntax.FunctionCallExpr)
		if !ok {
			return nil
		}
		fn, ok := functions[call.Name]
		if !ok {
			failure = diag.Newf(diag.KindUnboundIdentifier, "unknown function %q", call.Name).WithRange(call.NameRange)
			return nil
		}
		failure = checkArity(call, fn)
		return nil
	})
	if failure != nil {
		return failure
	}
	return nil
}

// checkArity compares the argument count of call with the parameters of fn.
// A call whose final argument is expanded with "..." can supply any number
// of trailing arguments, so only the fixed prefix is checked.
func checkArity(call *hclsyntax.FunctionCallExpr, fn function.Function) *diag.Error {
	want := len(fn.Params())
	variadic := fn.VarParam() != nil
	got := len(call.Args)

	if call.ExpandFinal {
		if !variadic && got-1 > want {
			return diag.Newf(diag.KindSyntax, "function %q takes %d arguments, got at least %d", call.Name, want, got-1).
				WithRange(call.Range())
		}
		return nil
	}

	switch {
	case got < want && variadic:
		return diag.Newf(diag.KindSyntax, "function %q takes at least %d arguments, got %d", call.Name, want, got).
			WithRange(call.Range())
	case got < want, got > want && !variadic:
		return diag.Newf(diag.KindSyntax, "function %q takes %d arguments, got %d", call.Name, want, got).
			WithRange(call.Range())
	}
	return nil
}

// calledFunctions returns the sorted, unique names of every function called
// in expr.
func calledFunctions(expr hclsyntax.Expression) []string {
	seen := make(map[string]struct{})
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
			seen[call.Name] = struct{}{}
		}
		return nil
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// referencedInputs returns the sorted, unique root names read by expr.
func referencedInputs(expr hclsyntax.Expression) []string {
	seen := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		seen[traversal.RootName()] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
