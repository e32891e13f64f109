// Package diag defines the error-reporting model shared by the compiler, the
// evaluator and the boundary layer.
//
// Engine failures are carried as *Error values inside Go code. At every
// boundary (C ABI, wire protocol, CLI output) they are flattened into a
// Diagnostic: a plain record holding a message, an is-error flag and a
// half-open byte span into the expression text.
package diag
