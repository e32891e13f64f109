package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/exprbridge/internal/cache"
	"github.com/specialistvlad/exprbridge/internal/repl"
	"github.com/specialistvlad/exprbridge/internal/wire"
	"github.com/specialistvlad/exprbridge/modules"
)

const historyFile = ".exprbridge_history"

func newReplCommand(flags *globalFlags) *cobra.Command {
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Declare inputs with :inputs, bind them with :set and type expressions to
evaluate them. Type :help inside the session for every command.`,
		Args: exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			runner := &wire.Runner{
				Cache:     cache.New(cfg.Engine.CacheCapacity, nil),
				Functions: modules.NewRegistry().Functions(),
				MaxBytes:  cfg.Engine.MaxExpressionBytes,
			}

			history := ""
			if !noHistory {
				if home, err := os.UserHomeDir(); err == nil {
					history = filepath.Join(home, historyFile)
				}
			}
			return repl.Run(ctx, cmd.OutOrStdout(), runner, history)
		},
	}
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not read or write the history file")
	return cmd
}
