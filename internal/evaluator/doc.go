// Package evaluator runs compiled expressions against concrete input values.
//
// Evaluation builds a fresh evaluation context for every call, so a single
// compiled expression can be evaluated from many goroutines at once.
package evaluator
