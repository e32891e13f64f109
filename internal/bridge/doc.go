// Package bridge is the ownership layer between the expression engine and
// foreign callers.
//
// Every value a caller can hold is reachable only through a typed handle
// issued by an Engine: compiled expressions, compile outcomes, evaluate
// outcomes and engine-allocated text. Each handle is created by exactly one
// engine operation and destroyed by exactly one matching release operation.
// Releasing twice, or using a handle after release, returns an error wrapping
// handlestore.ErrStaleHandle instead of touching reused memory.
//
// Outcome records always hold exactly one variant: an error diagnostic, or a
// success value. Extracting the compiled expression from a compile outcome
// consumes the outcome in the same call, so the extracted handle outlives it.
package bridge
