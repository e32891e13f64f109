package compiler

import "github.com/zclconf/go-cty/cty/function"

// Option configures a Compile call.
type Option func(*options)

type options struct {
	functions map[string]function.Function
	maxBytes  int
}

// WithFunctions sets the function table calls are checked against and
// evaluated with. The map must not be modified afterwards.
func WithFunctions(fns map[string]function.Function) Option {
	return func(o *options) {
		o.functions = fns
	}
}

// WithMaxBytes rejects expressions longer than n bytes. Zero disables the limit.
func WithMaxBytes(n int) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}
