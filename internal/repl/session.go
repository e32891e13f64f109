// Package repl implements the interactive `exprbridge repl` loop: declare
// input names, bind values, and evaluate expressions against them.
package repl

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/wire"
)

const helpText = `Commands:
  :inputs a b ...   declare input names, in order
  :set NAME VALUE   bind a value (JSON, or raw text as a string)
  :unset NAME       remove a binding
  :env              show names and bindings
  :fmt EXPR         print the canonical form of EXPR
  :help             show this help
  :quit             leave the REPL
Anything else is evaluated as an expression.`

// Session holds the REPL state. It is not safe for concurrent use.
type Session struct {
	out    io.Writer
	runner *wire.Runner
	names  []string
	values map[string]string
}

// NewSession creates a session writing to out.
func NewSession(out io.Writer, runner *wire.Runner) *Session {
	return &Session{
		out:    out,
		runner: runner,
		values: make(map[string]string),
	}
}

// Handle processes one line and reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		s.evaluate(ctx, line)
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(s.out, helpText)
	case ":inputs":
		s.names = strings.Fields(rest)
		for name := range s.values {
			if !slices.Contains(s.names, name) {
				delete(s.values, name)
			}
		}
		fmt.Fprintf(s.out, "inputs: %s\n", strings.Join(s.names, ", "))
	case ":set":
		name, value, ok := strings.Cut(rest, " ")
		if !ok || name == "" {
			fmt.Fprintln(s.out, "usage: :set NAME VALUE")
			return false
		}
		if !slices.Contains(s.names, name) {
			s.names = append(s.names, name)
		}
		s.values[name] = strings.TrimSpace(value)
	case ":unset":
		delete(s.values, rest)
	case ":env":
		for _, name := range s.names {
			if v, ok := s.values[name]; ok {
				fmt.Fprintf(s.out, "%s = %s\n", name, v)
			} else {
				fmt.Fprintf(s.out, "%s (unset)\n", name)
			}
		}
	case ":fmt":
		resp := s.runner.Run(ctx, wire.Request{Expression: rest, Inputs: s.names})
		if resp.Compile.IsError {
			s.report(rest, resp.Compile)
			return false
		}
		fmt.Fprintln(s.out, resp.Canonical)
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for a list.\n", cmd)
	}
	return false
}

func (s *Session) evaluate(ctx context.Context, src string) {
	row := make([]string, len(s.names))
	for i, name := range s.names {
		v, ok := s.values[name]
		if !ok {
			fmt.Fprintf(s.out, "input %s has no value; use :set %s VALUE\n", name, name)
			return
		}
		row[i] = v
	}

	resp := s.runner.Run(ctx, wire.Request{Expression: src, Inputs: s.names, Rows: [][]string{row}})
	if resp.Compile.IsError {
		s.report(src, resp.Compile)
		return
	}
	res := resp.Results[0]
	if res.Diagnostic.IsError {
		s.report(src, res.Diagnostic)
		return
	}
	fmt.Fprintln(s.out, res.Result)
}

// report prints d, underlining its span in src when it has one.
func (s *Session) report(src string, d diag.Diagnostic) {
	if d.Span.End > d.Span.Start && d.Span.End <= uint64(len(src)) {
		fmt.Fprintf(s.out, "  %s\n  %s%s\n",
			src,
			strings.Repeat(" ", len([]rune(src[:d.Span.Start]))),
			strings.Repeat("^", max(1, len([]rune(src[d.Span.Start:d.Span.End])))),
		)
	}
	fmt.Fprintln(s.out, d.Message)
}
