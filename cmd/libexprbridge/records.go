package main

/*
#cgo CFLAGS: -DEXPRBRIDGE_TYPES_ONLY
#include "exprbridge.h"
*/
import "C"

import (
	"sync"

	"github.com/specialistvlad/exprbridge/internal/bridge"
)

// recordTable maps C allocations handed to the caller back to the engine
// handles that own their contents. A pointer missing from the table was
// never issued or was already released.
type recordTable struct {
	mu       sync.Mutex
	compiles map[*C.ExprCompileOutcome]bridge.CompileOutcomeHandle
	evals    map[*C.ExprEvaluateOutcome]bridge.EvaluateOutcomeHandle
	texts    map[*C.char]bridge.TextHandle
}

func newRecordTable() *recordTable {
	return &recordTable{
		compiles: make(map[*C.ExprCompileOutcome]bridge.CompileOutcomeHandle),
		evals:    make(map[*C.ExprEvaluateOutcome]bridge.EvaluateOutcomeHandle),
		texts:    make(map[*C.char]bridge.TextHandle),
	}
}

func (t *recordTable) putCompile(p *C.ExprCompileOutcome, h bridge.CompileOutcomeHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compiles[p] = h
}

func (t *recordTable) takeCompile(p *C.ExprCompileOutcome) (bridge.CompileOutcomeHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.compiles[p]
	delete(t.compiles, p)
	return h, ok
}

func (t *recordTable) putEvaluate(p *C.ExprEvaluateOutcome, h bridge.EvaluateOutcomeHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evals[p] = h
}

func (t *recordTable) takeEvaluate(p *C.ExprEvaluateOutcome) (bridge.EvaluateOutcomeHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.evals[p]
	delete(t.evals, p)
	return h, ok
}

func (t *recordTable) putText(p *C.char, h bridge.TextHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.texts[p] = h
}

func (t *recordTable) takeText(p *C.char) (bridge.TextHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.texts[p]
	delete(t.texts, p)
	return h, ok
}

func (t *recordTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.compiles) + len(t.evals) + len(t.texts)
}
