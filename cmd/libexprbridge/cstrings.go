package main

/*
#cgo CFLAGS: -DEXPRBRIDGE_TYPES_ONLY
#include <stdlib.h>
#include "exprbridge.h"
*/
import "C"

import (
	"unsafe"

	"github.com/specialistvlad/exprbridge/internal/diag"
)

// cStringArray copies ss into a C-allocated array of C strings. The
// returned func frees the strings and the array.
func cStringArray(ss []string) (**C.char, C.size_t, func()) {
	if len(ss) == 0 {
		return nil, 0, func() {}
	}
	arr := (**C.char)(C.calloc(C.size_t(len(ss)), C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	ptrs := unsafe.Slice(arr, len(ss))
	for i, s := range ss {
		ptrs[i] = C.CString(s)
	}
	return arr, C.size_t(len(ss)), func() {
		for _, p := range ptrs {
			C.free(unsafe.Pointer(p))
		}
		C.free(unsafe.Pointer(arr))
	}
}

// compileStrings calls exprbridge_compile the way a C caller would.
func compileStrings(expr string, names []string) *C.ExprCompileOutcome {
	cexpr := C.CString(expr)
	defer C.free(unsafe.Pointer(cexpr))
	arr, n, free := cStringArray(names)
	defer free()
	return exprbridge_compile(cexpr, arr, n)
}

// evaluateStrings calls exprbridge_evaluate the way a C caller would.
func evaluateStrings(values []string, h C.ExprHandle) *C.ExprEvaluateOutcome {
	arr, n, free := cStringArray(values)
	defer free()
	return exprbridge_evaluate(arr, n, h)
}

func readDiagnostic(d *C.ExprDiagnostic) diag.Diagnostic {
	out := diag.Diagnostic{
		IsError: bool(d.is_error),
		Span:    diag.Span{Start: uint64(d.start), End: uint64(d.end)},
		Kind:    diag.Kind(d.kind),
	}
	if d.message != nil {
		out.Message = C.GoString(d.message)
	}
	return out
}

func readCompileOutcome(o *C.ExprCompileOutcome) (diag.Diagnostic, C.ExprHandle) {
	return readDiagnostic(&o.diagnostic), o.result
}

// readEvaluateOutcome reports ok=false when the outcome carries no result
// text.
func readEvaluateOutcome(o *C.ExprEvaluateOutcome) (d diag.Diagnostic, result string, ok bool) {
	d = readDiagnostic(&o.diagnostic)
	if o.result == nil {
		return d, "", false
	}
	return d, C.GoString(o.result), true
}

func readText(s *C.char) (string, bool) {
	if s == nil {
		return "", false
	}
	return C.GoString(s), true
}
