package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty/function"
)

// Module is the interface that all function modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the functions available to expressions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]function.Function
}

// New creates and initializes a new Registry instance populated by modules.
func New(modules ...Module) *Registry {
	r := &Registry{functions: make(map[string]function.Function)}
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// RegisterFunction adds a function under name. Registering the same name
// twice, or a name that is not a valid identifier, is a programmer error and
// panics.
func (r *Registry) RegisterFunction(name string, fn function.Function) {
	if !hclsyntax.ValidIdentifier(name) {
		panic(fmt.Sprintf("function name '%s' is not a valid identifier", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[name]; exists {
		panic(fmt.Sprintf("function with name '%s' already registered", name))
	}
	slog.Debug("Registering function.", "name", name)
	r.functions[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (function.Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Functions returns a snapshot of the function table. The returned map is
// owned by the caller.
func (r *Registry) Functions() map[string]function.Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.functions)
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.functions)
}
