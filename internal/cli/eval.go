package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/exprbridge/internal/bridge"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/diag"
)

func newEvalCommand(flags *globalFlags) *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate one expression",
		Long: `Compile EXPRESSION against the declared inputs and evaluate it once.

Inputs are declared in order with --input NAME=VALUE. Values are parsed as
JSON; anything that is not valid JSON is taken as a raw string.

Examples:
  exprbridge eval --input a=1 --input b=2 'a + b'
  exprbridge eval --input name=world 'format("hello %s", name)'`,
		Args: exactArgs(1, "one expression"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			names, values, err := splitInputs(inputs)
			if err != nil {
				return err
			}
			out, err := evaluateOnce(ctx, cfg, args[0], names, values)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", out)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input binding NAME=VALUE, repeatable, in order")
	return cmd
}

// splitInputs parses NAME=VALUE bindings, keeping their order.
func splitInputs(bindings []string) (names, values []string, err error) {
	for _, b := range bindings {
		name, value, ok := strings.Cut(b, "=")
		if !ok {
			return nil, nil, usageError("invalid --input %q: expected NAME=VALUE", b)
		}
		names = append(names, name)
		values = append(values, value)
	}
	return names, values, nil
}

// evaluateOnce drives a full handle lifecycle on a private engine.
func evaluateOnce(ctx context.Context, cfg *config.Config, src string, names, values []string) (string, error) {
	engine := bridge.New(
		bridge.WithLogger(ctxlog.FromContext(ctx)),
		bridge.WithMaxExpressionBytes(cfg.Engine.MaxExpressionBytes),
	)

	compiled := engine.Compile(ctx, src, names)
	outcome, err := engine.CompileOutcome(compiled)
	if err != nil {
		return "", err
	}
	if outcome.Diagnostic.IsError {
		_ = engine.ReleaseCompileOutcome(compiled)
		return "", diagnosticError(outcome.Diagnostic)
	}
	expr, err := engine.TakeCompiledExpression(compiled)
	if err != nil {
		return "", err
	}
	defer engine.ReleaseCompiledExpression(expr)

	evaluated := engine.Evaluate(ctx, values, expr)
	defer engine.ReleaseEvaluateOutcome(evaluated)
	result, err := engine.EvaluateOutcome(evaluated)
	if err != nil {
		return "", err
	}
	if result.Diagnostic.IsError {
		return "", diagnosticError(result.Diagnostic)
	}
	return engine.Text(result.Result)
}

func diagnosticError(d diag.Diagnostic) *ExitError {
	return &ExitError{Code: 1, Message: d.String()}
}

// canonical compiles src and returns its canonical text via Stringify.
func canonical(ctx context.Context, cfg *config.Config, src string, names []string) (string, error) {
	engine := bridge.New(
		bridge.WithLogger(ctxlog.FromContext(ctx)),
		bridge.WithMaxExpressionBytes(cfg.Engine.MaxExpressionBytes),
	)

	compiled := engine.Compile(ctx, src, names)
	defer engine.ReleaseCompileOutcome(compiled)
	outcome, err := engine.CompileOutcome(compiled)
	if err != nil {
		return "", err
	}
	if outcome.Diagnostic.IsError {
		return "", diagnosticError(outcome.Diagnostic)
	}

	text, err := engine.Stringify(outcome.Result)
	if err != nil {
		return "", fmt.Errorf("failed to stringify expression: %w", err)
	}
	defer engine.ReleaseText(text)
	return engine.Text(text)
}

func newFmtCommand(flags *globalFlags) *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "fmt EXPRESSION",
		Short: "Print the canonical form of an expression",
		Long: `Compile EXPRESSION against the declared input names and print its
canonical text. Every binary operation is parenthesised, so the output
recompiles to an expression that evaluates identically.

Example:
  exprbridge fmt --inputs a,b,c 'a+b*c'`,
		Args: exactArgs(1, "one expression"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			out, err := canonical(ctx, cfg, args[0], inputs)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", out)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&inputs, "inputs", nil, "comma-separated input names, in order")
	return cmd
}
