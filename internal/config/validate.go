package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate checks cfg for values the application cannot run with. All
// problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: must be 'debug', 'info', 'warn', or 'error', got %q", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be 'text' or 'json', got %q", cfg.Log.Format))
	}

	if _, err := time.ParseDuration(cfg.Server.ReadTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.read_timeout: %w", err))
	}
	if _, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: %w", err))
	}
	if cfg.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes: must not be negative"))
	}

	if cfg.Engine.MaxExpressionBytes < 0 {
		errs = append(errs, fmt.Errorf("engine.max_expression_bytes: must not be negative"))
	}

	if cfg.Engine.MaintenanceSchedule != "off" {
		if _, err := cron.ParseStandard(cfg.Engine.MaintenanceSchedule); err != nil {
			errs = append(errs, fmt.Errorf("engine.maintenance_schedule: invalid cron schedule %q: %w", cfg.Engine.MaintenanceSchedule, err))
		}
	}

	switch cfg.Journal.Driver {
	case "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("journal.driver: must be 'sqlite' or 'sqlite3', got %q", cfg.Journal.Driver))
	}
	if d, err := time.ParseDuration(cfg.Journal.Retention); err != nil {
		errs = append(errs, fmt.Errorf("journal.retention: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("journal.retention: must be positive"))
	}

	for i, b := range cfg.Metrics.DurationBuckets {
		if i > 0 && b <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, fmt.Errorf("metrics.duration_buckets: must be strictly increasing"))
			break
		}
	}

	return errors.Join(errs...)
}
