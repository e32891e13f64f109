package bridge

import (
	"fmt"

	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/handlestore"
)

// ExpressionHandle names a compiled expression owned by the caller.
type ExpressionHandle handlestore.Handle

// CompileOutcomeHandle names the record returned by Engine.Compile.
type CompileOutcomeHandle handlestore.Handle

// EvaluateOutcomeHandle names the record returned by Engine.Evaluate.
type EvaluateOutcomeHandle handlestore.Handle

// TextHandle names engine-allocated text.
type TextHandle handlestore.Handle

// IsNull reports whether h is the null handle.
func (h ExpressionHandle) IsNull() bool { return h == 0 }

// IsNull reports whether h is the null handle.
func (h CompileOutcomeHandle) IsNull() bool { return h == 0 }

// IsNull reports whether h is the null handle.
func (h EvaluateOutcomeHandle) IsNull() bool { return h == 0 }

// IsNull reports whether h is the null handle.
func (h TextHandle) IsNull() bool { return h == 0 }

// CompileOutcome is a copy of a compile outcome record. Exactly one of
// Diagnostic.IsError and a non-null Result holds.
type CompileOutcome struct {
	Diagnostic diag.Diagnostic
	Result     ExpressionHandle
}

// EvaluateOutcome is a copy of an evaluate outcome record. Result is owned
// by the outcome and released with it.
type EvaluateOutcome struct {
	Diagnostic diag.Diagnostic
	Result     TextHandle
}

// Stats counts live handles per table.
type Stats struct {
	Expressions      int
	CompileOutcomes  int
	EvaluateOutcomes int
	Texts            int
}

// Total is the number of live handles across all tables.
func (s Stats) Total() int {
	return s.Expressions + s.CompileOutcomes + s.EvaluateOutcomes + s.Texts
}

// String summarizes live handle counts for logs.
func (s Stats) String() string {
	return fmt.Sprintf("expressions=%d compile_outcomes=%d evaluate_outcomes=%d texts=%d",
		s.Expressions, s.CompileOutcomes, s.EvaluateOutcomes, s.Texts)
}
