package config

import (
	"fmt"
	"strconv"
)

// Environment variables that override file and default values.
const (
	EnvLogLevel      = "EXPRBRIDGE_LOG_LEVEL"
	EnvLogFormat     = "EXPRBRIDGE_LOG_FORMAT"
	EnvServerAddr    = "EXPRBRIDGE_SERVER_ADDR"
	EnvCacheCapacity = "EXPRBRIDGE_CACHE_CAPACITY"
	EnvMetrics       = "EXPRBRIDGE_METRICS_ENABLED"
	EnvJournalPath   = "EXPRBRIDGE_JOURNAL_PATH"
)

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup(EnvServerAddr); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup(EnvJournalPath); ok && v != "" {
		cfg.Journal.Path = v
	}
	if v, ok := lookup(EnvCacheCapacity); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheCapacity, err)
		}
		cfg.Engine.CacheCapacity = n
	}
	if v, ok := lookup(EnvMetrics); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMetrics, err)
		}
		cfg.Metrics.Enabled = &b
	}
	return nil
}
