// Package ctyconv converts between the engine's textual boundary values and
// cty values.
//
// Inputs arrive as text. Text that parses as JSON becomes the matching typed
// value (number, bool, string, tuple, object, null); anything else is taken
// verbatim as a string. Results leave as JSON text.
package ctyconv
