// Package bigmath registers transcendental functions computed on
// arbitrary-precision floats.
//
// cty numbers are backed by *big.Float, so these functions keep the full
// precision of their inputs instead of round-tripping through float64.
package bigmath

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zephyrtronium/bigfloat"
)

// Precision is the mantissa precision of every result, in bits.
const Precision = 512

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("pow", PowFunc)
	r.RegisterFunction("exp", ExpFunc)
	r.RegisterFunction("ln", LnFunc)
	r.RegisterFunction("log", LogFunc)
	r.RegisterFunction("sqrt", SqrtFunc)
	r.RegisterFunction("pi", PiFunc)
	r.RegisterFunction("e", EFunc)
}

// DomainError is returned when a function is called on an argument outside
// its domain. It is reported as a call failure, not an argument conversion
// failure.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err DomainError) Error() string {
	r := err.X.Text('g', 10) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

var PowFunc = function.New(&function.Spec{
	Description: "Raises base to the power exponent.",
	Params: []function.Parameter{
		{Name: "base", Type: cty.Number},
		{Name: "exponent", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		x, y := args[0].AsBigFloat(), args[1].AsBigFloat()
		out, err := pow(x, y)
		if err != nil {
			return cty.UnknownVal(cty.Number), err
		}
		return cty.NumberVal(out), nil
	},
})

var ExpFunc = monadic("exp", "Returns e raised to the power x.", nil, bigfloat.Exp)

var LnFunc = monadic("ln", "Returns the natural logarithm of x.", positive, bigfloat.Log)

var LogFunc = function.New(&function.Spec{
	Description: "Returns the logarithm of x in the given base.",
	Params: []function.Parameter{
		{Name: "x", Type: cty.Number},
		{Name: "base", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (ret cty.Value, err error) {
		x, base := args[0].AsBigFloat(), args[1].AsBigFloat()
		if x.Sign() <= 0 {
			return cty.UnknownVal(cty.Number), DomainError{X: x, Arg: 1, Func: "log"}
		}
		if base.Sign() <= 0 || base.Cmp(big.NewFloat(1)) == 0 {
			return cty.UnknownVal(cty.Number), DomainError{X: base, Arg: 2, Func: "log"}
		}
		defer recoverDomain("log", &ret, &err)
		num := bigfloat.Log(newFloat(), x)
		den := bigfloat.Log(newFloat(), base)
		return cty.NumberVal(num.Quo(num, den)), nil
	},
})

var SqrtFunc = monadic("sqrt", "Returns the square root of x.", nonNegative, (*big.Float).Sqrt)

var PiFunc = niladic("Returns the constant pi.", bigfloat.Pi)

var EFunc = niladic("Returns Euler's number.", func(out *big.Float) *big.Float {
	return bigfloat.Exp(out, big.NewFloat(1))
})

func pow(x, y *big.Float) (*big.Float, error) {
	out := newFloat()
	switch x.Sign() {
	case 0:
		switch y.Sign() {
		case 1:
			return out, nil
		case 0:
			return out.SetInt64(1), nil
		default:
			return nil, DomainError{X: x, Arg: 1, Func: "pow"}
		}
	case -1:
		// Negative bases are defined for integral exponents only.
		if !y.IsInt() {
			return nil, DomainError{X: x, Arg: 1, Func: "pow"}
		}
		abs := newFloat().Abs(x)
		bigfloat.Pow(out, abs, y)
		n, _ := y.Int(nil)
		if n.Bit(0) == 1 {
			out.Neg(out)
		}
		return out, nil
	}
	return bigfloat.Pow(out, x, y), nil
}

func positive(x *big.Float) bool    { return x.Sign() > 0 }
func nonNegative(x *big.Float) bool { return x.Sign() >= 0 }

// monadic wraps a one-argument big.Float function. f must set out to its
// result. inDomain, when non-nil, rejects arguments before f runs.
func monadic(name, desc string, inDomain func(*big.Float) bool, f func(out, in *big.Float) *big.Float) function.Function {
	return function.New(&function.Spec{
		Description: desc,
		Params:      []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:        function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (ret cty.Value, err error) {
			x := args[0].AsBigFloat()
			if inDomain != nil && !inDomain(x) {
				return cty.UnknownVal(cty.Number), DomainError{X: x, Arg: 1, Func: name}
			}
			defer recoverDomain(name, &ret, &err)
			out := newFloat()
			f(out, newFloat().Set(x))
			return cty.NumberVal(out), nil
		},
	})
}

// niladic wraps a constant-producing function.
func niladic(desc string, f func(out *big.Float) *big.Float) function.Function {
	return function.New(&function.Spec{
		Description: desc,
		Params:      []function.Parameter{},
		Type:        function.StaticReturnType(cty.Number),
		Impl: func(_ []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.NumberVal(f(newFloat())), nil
		},
	})
}

// recoverDomain converts a big.ErrNaN panic from the underlying math into a
// function error. Any other panic propagates.
func recoverDomain(name string, ret *cty.Value, err *error) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok || !errors.As(e, &big.ErrNaN{}) {
		panic(r)
	}
	*ret = cty.UnknownVal(cty.Number)
	*err = fmt.Errorf("%s: %w", name, e)
}

func newFloat() *big.Float {
	return new(big.Float).SetPrec(Precision)
}
