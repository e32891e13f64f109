package app

import (
	"context"
	"errors"
	"net"

	"github.com/specialistvlad/exprbridge/internal/ctxlog"
)

// Serve runs the playground until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address once the
// server is listening.
func (a *App) Serve(ctx context.Context, ready chan<- net.Addr) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Serve started.")

	addr, err := a.startServer(ctx)
	if err != nil {
		return err
	}

	stopMaintenance, err := a.startMaintenance(ctx)
	if err != nil {
		return errors.Join(err, a.closeServer())
	}
	defer stopMaintenance()

	if a.Config().Server.WatchConfig {
		if err := a.watchConfig(ctx); err != nil {
			a.logger.Warn("Config watcher not started.", "error", err)
		}
	}

	if ready != nil {
		ready <- addr
	}

	<-ctx.Done()
	a.logger.Debug("Context cancelled, shutting down.")
	return a.closeServer()
}
