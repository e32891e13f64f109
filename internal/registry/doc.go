// Package registry provides the central "glue" for the function module system.
//
// The Registry stores the mapping between the function names an expression
// may call (e.g., "upper", "pow") and the cty functions that implement them.
// Modules contribute functions through Register; compiled expressions take an
// immutable snapshot of the table so later registrations never affect them.
//
// During startup the registry is validated to catch malformed function
// signatures before any expression is compiled against them.
package registry
