// Package encoding registers JSON and CSV codec functions.
package encoding

import (
	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("csvdecode", stdlib.CSVDecodeFunc)
	r.RegisterFunction("jsondecode", stdlib.JSONDecodeFunc)
	r.RegisterFunction("jsonencode", stdlib.JSONEncodeFunc)
}
