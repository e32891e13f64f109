package compiler

import (
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// errDivideByZero is returned by / and % when the divisor is zero.
var errDivideByZero = errors.New("divide by zero")

var (
	opCheckedDivide = checkedDivisor(hclsyntax.OpDivide)
	opCheckedModulo = checkedDivisor(hclsyntax.OpModulo)
)

// checkedDivisor wraps op so that a zero right operand fails instead of
// producing an infinity or returning the left operand unchanged.
func checkedDivisor(op *hclsyntax.Operation) *hclsyntax.Operation {
	return &hclsyntax.Operation{
		Type: op.Type,
		Impl: function.New(&function.Spec{
			Params: op.Impl.Params(),
			Type:   function.StaticReturnType(cty.Number),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				if args[1].AsBigFloat().Sign() == 0 {
					return cty.NilVal, errDivideByZero
				}
				return op.Impl.Call(args)
			},
		}),
	}
}

// checkDivisors swaps every / and % in expr for its checked variant.
func checkDivisors(expr hclsyntax.Expression) {
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if bin, ok := node.(*hclsyntax.BinaryOpExpr); ok {
			switch bin.Op {
			case hclsyntax.OpDivide:
				bin.Op = opCheckedDivide
			case hclsyntax.OpModulo:
				bin.Op = opCheckedModulo
			}
		}
		return nil
	})
}
