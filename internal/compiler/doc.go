// Package compiler turns expression text and an ordered list of input names
// into an immutable, reusable Expression.
//
// Compilation parses the text with the HCL native expression syntax, binds
// every root identifier to an input slot and checks every function call
// against the function table. It never evaluates anything.
package compiler
