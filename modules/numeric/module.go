// Package numeric registers the basic number functions from the cty
// standard library.
package numeric

import (
	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("abs", stdlib.AbsoluteFunc)
	r.RegisterFunction("ceil", stdlib.CeilFunc)
	r.RegisterFunction("floor", stdlib.FloorFunc)
	r.RegisterFunction("int", stdlib.IntFunc)
	r.RegisterFunction("max", stdlib.MaxFunc)
	r.RegisterFunction("min", stdlib.MinFunc)
	r.RegisterFunction("parseint", stdlib.ParseIntFunc)
	r.RegisterFunction("signum", stdlib.SignumFunc)
}
