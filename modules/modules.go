// Package modules lists the function modules compiled into every build of
// the engine.
package modules

import (
	"github.com/specialistvlad/exprbridge/internal/registry"
	"github.com/specialistvlad/exprbridge/modules/bigmath"
	"github.com/specialistvlad/exprbridge/modules/collection"
	"github.com/specialistvlad/exprbridge/modules/encoding"
	"github.com/specialistvlad/exprbridge/modules/numeric"
	"github.com/specialistvlad/exprbridge/modules/text"
)

// Core returns the definitive list of all modules that are compiled into the
// engine.
func Core() []registry.Module {
	return []registry.Module{
		&numeric.Module{},
		&bigmath.Module{},
		&text.Module{},
		&collection.Module{},
		&encoding.Module{},
	}
}

// NewRegistry returns a registry populated with the core modules.
func NewRegistry() *registry.Registry {
	return registry.New(Core()...)
}
