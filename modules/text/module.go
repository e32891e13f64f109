// Package text registers string functions from the cty standard library.
package text

import (
	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("chomp", stdlib.ChompFunc)
	r.RegisterFunction("format", stdlib.FormatFunc)
	r.RegisterFunction("indent", stdlib.IndentFunc)
	r.RegisterFunction("join", stdlib.JoinFunc)
	r.RegisterFunction("lower", stdlib.LowerFunc)
	r.RegisterFunction("regex", stdlib.RegexFunc)
	r.RegisterFunction("regexall", stdlib.RegexAllFunc)
	r.RegisterFunction("replace", stdlib.ReplaceFunc)
	r.RegisterFunction("reverse", stdlib.ReverseFunc)
	r.RegisterFunction("split", stdlib.SplitFunc)
	r.RegisterFunction("strlen", stdlib.StrlenFunc)
	r.RegisterFunction("substr", stdlib.SubstrFunc)
	r.RegisterFunction("title", stdlib.TitleFunc)
	r.RegisterFunction("trim", stdlib.TrimFunc)
	r.RegisterFunction("trimprefix", stdlib.TrimPrefixFunc)
	r.RegisterFunction("trimspace", stdlib.TrimSpaceFunc)
	r.RegisterFunction("trimsuffix", stdlib.TrimSuffixFunc)
	r.RegisterFunction("upper", stdlib.UpperFunc)
}
