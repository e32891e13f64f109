// Package wasmhost runs the exprbridge WASI module under wazero, so the
// same wire protocol can be exercised against the sandboxed build.
package wasmhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/wire"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// Host holds a compiled WASI module. Each Run instantiates a fresh module
// instance, so runs are isolated. Safe for concurrent use.
type Host struct {
	runtime wazero.Runtime
	module  wazero.CompiledModule
}

// Load compiles the module at path.
func Load(ctx context.Context, path string) (*Host, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm module: %w", err)
	}
	return New(ctx, bin)
}

// New compiles a module from its binary.
func New(ctx context.Context, bin []byte) (*Host, error) {
	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	mod, err := r.CompileModule(ctx, bin)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to compile wasm module: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("WASI module compiled.", "bytes", len(bin))
	return &Host{runtime: r, module: mod}, nil
}

// Run sends req to a fresh module instance and decodes its response. A
// non-zero exit code is not an error as long as a response was written.
func (h *Host) Run(ctx context.Context, req wire.Request) (wire.Response, error) {
	var stdin, stdout, stderr bytes.Buffer
	if err := wire.Encode(&stdin, req); err != nil {
		return wire.Response{}, err
	}

	cfg := wazero.NewModuleConfig().
		WithStdin(&stdin).
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithArgs("exprbridge").
		// Anonymous instances may be instantiated concurrently.
		WithName("")

	mod, err := h.runtime.InstantiateModule(ctx, h.module, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) {
			return wire.Response{}, fmt.Errorf("wasm module failed: %w", err)
		}
		ctxlog.FromContext(ctx).Debug("WASI module exited.", "code", exitErr.ExitCode(), "stderr", stderr.String())
		if stdout.Len() == 0 {
			return wire.Response{}, fmt.Errorf("wasm module exited with code %d: %s", exitErr.ExitCode(), stderr.String())
		}
	}
	return wire.DecodeResponse(&stdout)
}

// Close releases the runtime and every compiled module.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}
