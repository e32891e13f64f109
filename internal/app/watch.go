package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/exprbridge/internal/cache"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
)

// reloadDebounce collapses the burst of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// watchConfig reloads the configuration whenever the config file changes,
// until ctx is cancelled. The parent directory is watched so that
// rename-over-write saves are seen.
func (a *App) watchConfig(ctx context.Context) error {
	if a.configPath == "" {
		return nil
	}
	path, err := filepath.Abs(a.configPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		a.logger.Info("Config watcher started.", "path", path)
		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				a.logger.Debug("Config watcher stopped.")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || event.Op&fsnotify.Chmod == fsnotify.Chmod {
					continue
				}
				a.logger.Debug("Config file event detected.", "op", event.Op.String())
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if err := a.Reload(ctx); err != nil {
						a.logger.Error("Config reload failed.", "error", err)
					}
				})
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.logger.Error("Config watcher error.", "error", err)
			}
		}
	}()
	return nil
}

// Reload re-reads the config file and applies the settings that can change
// at runtime: log level and cache capacity. Other changes are logged and
// take effect on restart.
func (a *App) Reload(ctx context.Context) error {
	if a.configPath == "" {
		return fmt.Errorf("no config file to reload")
	}
	next, err := config.Load(ctx, a.configPath)
	if err != nil {
		return err
	}

	a.mu.Lock()
	prev := a.cfg
	a.cfg = next
	a.mu.Unlock()

	if next.Log.Level != prev.Log.Level {
		a.level.Set(ctxlog.ParseLevel(next.Log.Level))
		a.logger.Info("Log level changed.", "from", prev.Log.Level, "to", next.Log.Level)
	}
	if next.Engine.CacheCapacity != prev.Engine.CacheCapacity {
		a.cache.Store(cache.New(next.Engine.CacheCapacity, a.collector))
		a.collector.SetCacheEntries(0)
		a.logger.Info("Compile cache resized.", "from", prev.Engine.CacheCapacity, "to", next.Engine.CacheCapacity)
	}
	if next.Server != prev.Server || next.Journal != prev.Journal {
		a.logger.Warn("Server and journal settings changed; restart to apply them.")
	}
	return nil
}
