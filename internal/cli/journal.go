package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/exprbridge/internal/journal"
)

func newJournalCommand(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent playground evaluations",
		Long: `Print the most recent evaluations recorded by the playground, newest
first. The journal must be enabled with journal.path in the config file.`,
		Args: exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled() {
				return usageError("journal is disabled: set journal.path in the config file")
			}
			if limit <= 0 {
				return usageError("--limit must be positive")
			}

			j, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				printf(cmd, "%s\n", formatEntry(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func formatEntry(e journal.Entry) string {
	bindings := make([]string, len(e.InputNames))
	for i, name := range e.InputNames {
		value := ""
		if i < len(e.Values) {
			value = e.Values[i]
		}
		bindings[i] = name + "=" + value
	}
	outcome := e.Result
	if e.Diagnostic.IsError {
		outcome = e.Diagnostic.String()
	}
	return fmt.Sprintf("%s  %-36s  %s  [%s]  => %s",
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.RequestID,
		e.Expression,
		strings.Join(bindings, " "),
		outcome,
	)
}
