//go:build wasip1

// Command exprbridge-wasi runs the engine as a WASI (wasip1) module.
//
// Protocol: one wire request on stdin, one wire response on stdout.
//
//	stdin:  {"expression": "a + b", "inputs": ["a", "b"], "rows": [["1", "2"]]}
//	stdout: {"compile": {...}, "canonical": "a + b", "results": [{"result": "3", ...}]}
//
// Engine failures are reported inside the response and exit 0. A request
// that is not valid JSON exits 1 with a compile diagnostic.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o exprbridge.wasm ./cmd/wasi
package main

import (
	"context"
	"os"

	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/wire"
	"github.com/specialistvlad/exprbridge/modules"
)

func main() {
	req, err := wire.DecodeRequest(os.Stdin)
	if err != nil {
		_ = wire.Encode(os.Stdout, wire.Response{Compile: diag.FromError(diag.Newf(diag.KindSyntax, "%v", err))})
		os.Exit(1)
	}

	runner := &wire.Runner{Functions: modules.NewRegistry().Functions()}
	resp := runner.Run(context.Background(), req)
	if err := wire.Encode(os.Stdout, resp); err != nil {
		os.Exit(2)
	}
}
