package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the command tree. Command output goes to outW and
// logs go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "exprbridge",
		Short: "Compile and evaluate named-input expressions",
		Long: `exprbridge compiles small expressions against an ordered list of input
names and evaluates them against positional values. The same engine is
exposed as a C library, a WASI module, an HTTP playground and a REPL.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file path (.hcl, .yaml or .yml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json (overrides config)")

	root.AddCommand(
		newEvalCommand(&flags),
		newFmtCommand(&flags),
		newServeCommand(&flags),
		newReplCommand(&flags),
		newWasmCommand(&flags),
		newJournalCommand(&flags),
		newVersionCommand(),
	)
	return root
}

// load reads the configuration, applies flag overrides and returns a
// context carrying a logger built from the result.
func (f *globalFlags) load(cmd *cobra.Command) (context.Context, *config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, f.configPath)
	if err != nil {
		return nil, nil, usageError("%v", err)
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, usageError("invalid configuration: %v", err)
	}

	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	logger.Debug("Configuration loaded.", "path", f.configPath)
	return ctxlog.WithLogger(ctx, logger), cfg, nil
}

func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("expected %s, got %d arguments", what, len(args))
		}
		return nil
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
