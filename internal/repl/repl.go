package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/wire"
)

const prompt = "expr> "

// Run reads lines from the terminal until EOF or :quit. History is loaded
// from and saved to historyPath when it is non-empty.
func Run(ctx context.Context, out io.Writer, runner *wire.Runner, historyPath string) error {
	logger := ctxlog.FromContext(ctx)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(historyPath)
			if err != nil {
				logger.Warn("Failed to save REPL history.", "path", historyPath, "error", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	fmt.Fprintln(out, "exprbridge repl. Type :help for commands.")
	session := NewSession(out, runner)
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		ln.AppendHistory(line)
		if session.Handle(ctx, line) {
			return nil
		}
	}
}
