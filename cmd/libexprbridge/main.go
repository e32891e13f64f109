// Command libexprbridge builds the engine as a C shared library:
//
//	go build -buildmode=c-shared -o libexprbridge.so ./cmd/libexprbridge
//
// The exported functions are declared in exprbridge.h. Logging goes to
// stderr and follows EXPRBRIDGE_LOG_LEVEL and EXPRBRIDGE_LOG_FORMAT.
package main

/*
#cgo CFLAGS: -DEXPRBRIDGE_TYPES_ONLY
#include <stdlib.h>
#include "exprbridge.h"
*/
import "C"

import (
	"context"
	"log/slog"
	"os"
	"unsafe"

	"github.com/specialistvlad/exprbridge/internal/bridge"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/diag"
)

var (
	logger = newLogger()
	engine = bridge.New(
		bridge.WithLogger(logger),
		bridge.WithMaxExpressionBytes(config.DefaultMaxExpressionBytes),
	)
	records = newRecordTable()
)

func newLogger() *slog.Logger {
	level, _ := os.LookupEnv(config.EnvLogLevel)
	format, _ := os.LookupEnv(config.EnvLogFormat)
	if level == "" {
		level = "warn"
	}
	return ctxlog.New(level, format, os.Stderr)
}

func main() {}

//export exprbridge_compile
func exprbridge_compile(expr *C.char, names **C.char, n C.size_t) *C.ExprCompileOutcome {
	out := engine.Compile(context.Background(), C.GoString(expr), goStrings(names, n))
	view, err := engine.CompileOutcome(out)
	if err != nil {
		view.Diagnostic = diag.FromError(err)
	}

	rec := (*C.ExprCompileOutcome)(C.calloc(1, C.size_t(unsafe.Sizeof(C.ExprCompileOutcome{}))))
	fillDiagnostic(&rec.diagnostic, view.Diagnostic)
	rec.result = C.ExprHandle(view.Result)
	records.putCompile(rec, out)
	return rec
}

//export exprbridge_take_compiled_expression
func exprbridge_take_compiled_expression(o *C.ExprCompileOutcome) C.ExprHandle {
	if o == nil {
		return 0
	}
	out, ok := records.takeCompile(o)
	if !ok {
		logger.Error("exprbridge_take_compiled_expression: unknown or already released outcome.", "ptr", unsafe.Pointer(o))
		return 0
	}
	h, err := engine.TakeCompiledExpression(out)
	if err != nil {
		logger.Error("exprbridge_take_compiled_expression failed.", "error", err)
	}
	freeCompile(o)
	return C.ExprHandle(h)
}

//export exprbridge_release_compile_outcome
func exprbridge_release_compile_outcome(o *C.ExprCompileOutcome) {
	if o == nil {
		return
	}
	out, ok := records.takeCompile(o)
	if !ok {
		logger.Error("exprbridge_release_compile_outcome: unknown or already released outcome.", "ptr", unsafe.Pointer(o))
		return
	}
	if err := engine.ReleaseCompileOutcome(out); err != nil {
		logger.Error("exprbridge_release_compile_outcome failed.", "error", err)
	}
	freeCompile(o)
}

//export exprbridge_release_compiled_expression
func exprbridge_release_compiled_expression(h C.ExprHandle) {
	if err := engine.ReleaseCompiledExpression(bridge.ExpressionHandle(h)); err != nil {
		logger.Error("exprbridge_release_compiled_expression failed.", "error", err)
	}
}

//export exprbridge_evaluate
func exprbridge_evaluate(values **C.char, n C.size_t, h C.ExprHandle) *C.ExprEvaluateOutcome {
	out := engine.Evaluate(context.Background(), goStrings(values, n), bridge.ExpressionHandle(h))
	view, err := engine.EvaluateOutcome(out)
	if err != nil {
		view.Diagnostic = diag.FromError(err)
	}

	rec := (*C.ExprEvaluateOutcome)(C.calloc(1, C.size_t(unsafe.Sizeof(C.ExprEvaluateOutcome{}))))
	fillDiagnostic(&rec.diagnostic, view.Diagnostic)
	if !view.Result.IsNull() {
		text, err := engine.Text(view.Result)
		if err != nil {
			fillDiagnostic(&rec.diagnostic, diag.FromError(err))
		} else {
			rec.result = C.CString(text)
		}
	}
	records.putEvaluate(rec, out)
	return rec
}

//export exprbridge_release_evaluate_outcome
func exprbridge_release_evaluate_outcome(o *C.ExprEvaluateOutcome) {
	if o == nil {
		return
	}
	out, ok := records.takeEvaluate(o)
	if !ok {
		logger.Error("exprbridge_release_evaluate_outcome: unknown or already released outcome.", "ptr", unsafe.Pointer(o))
		return
	}
	if err := engine.ReleaseEvaluateOutcome(out); err != nil {
		logger.Error("exprbridge_release_evaluate_outcome failed.", "error", err)
	}
	C.free(unsafe.Pointer(o.diagnostic.message))
	C.free(unsafe.Pointer(o.result))
	C.free(unsafe.Pointer(o))
}

//export exprbridge_stringify
func exprbridge_stringify(h C.ExprHandle) *C.char {
	th, err := engine.Stringify(bridge.ExpressionHandle(h))
	if err != nil {
		logger.Error("exprbridge_stringify failed.", "error", err)
		return nil
	}
	text, err := engine.Text(th)
	if err != nil {
		logger.Error("exprbridge_stringify failed.", "error", err)
		_ = engine.ReleaseText(th)
		return nil
	}
	s := C.CString(text)
	records.putText(s, th)
	return s
}

//export exprbridge_release_text
func exprbridge_release_text(s *C.char) {
	if s == nil {
		return
	}
	th, ok := records.takeText(s)
	if !ok {
		logger.Error("exprbridge_release_text: unknown or already released text.", "ptr", unsafe.Pointer(s))
		return
	}
	if err := engine.ReleaseText(th); err != nil {
		logger.Error("exprbridge_release_text failed.", "error", err)
	}
	C.free(unsafe.Pointer(s))
}

func goStrings(p **C.char, n C.size_t) []string {
	if p == nil || n == 0 {
		return nil
	}
	ptrs := unsafe.Slice(p, int(n))
	out := make([]string, len(ptrs))
	for i, s := range ptrs {
		out[i] = C.GoString(s)
	}
	return out
}

func fillDiagnostic(dst *C.ExprDiagnostic, d diag.Diagnostic) {
	if dst.message != nil {
		C.free(unsafe.Pointer(dst.message))
	}
	*dst = C.ExprDiagnostic{}
	if !d.IsError {
		return
	}
	dst.message = C.CString(d.Message)
	dst.is_error = C.bool(true)
	dst.start = C.uint64_t(d.Span.Start)
	dst.end = C.uint64_t(d.Span.End)
	dst.kind = C.uint32_t(d.Kind)
}

func freeCompile(o *C.ExprCompileOutcome) {
	C.free(unsafe.Pointer(o.diagnostic.message))
	C.free(unsafe.Pointer(o))
}
