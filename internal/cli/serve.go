package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/exprbridge/internal/app"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP playground",
		Long: `Serve POST /evaluate, GET /health and GET /metrics until interrupted.

With server.watch_config enabled in the config file, log level and cache
capacity are reloaded when the file changes.`,
		Args: exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApp(ctx, cmd.ErrOrStderr(), cfg, app.WithConfigPath(flags.configPath))
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
