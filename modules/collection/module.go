// Package collection registers list, map and object functions from the cty
// standard library.
package collection

import (
	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the functions with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunction("chunklist", stdlib.ChunklistFunc)
	r.RegisterFunction("coalesce", stdlib.CoalesceFunc)
	r.RegisterFunction("concat", stdlib.ConcatFunc)
	r.RegisterFunction("contains", stdlib.ContainsFunc)
	r.RegisterFunction("distinct", stdlib.DistinctFunc)
	r.RegisterFunction("element", stdlib.ElementFunc)
	r.RegisterFunction("flatten", stdlib.FlattenFunc)
	r.RegisterFunction("keys", stdlib.KeysFunc)
	r.RegisterFunction("length", stdlib.LengthFunc)
	r.RegisterFunction("lookup", stdlib.LookupFunc)
	r.RegisterFunction("merge", stdlib.MergeFunc)
	r.RegisterFunction("range", stdlib.RangeFunc)
	r.RegisterFunction("slice", stdlib.SliceFunc)
	r.RegisterFunction("sort", stdlib.SortFunc)
	r.RegisterFunction("values", stdlib.ValuesFunc)
	r.RegisterFunction("zipmap", stdlib.ZipmapFunc)
}
