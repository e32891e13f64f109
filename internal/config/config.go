package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `hcl:"level,optional" yaml:"level"`
	// Format is text or json.
	Format string `hcl:"format,optional" yaml:"format"`
}

// ServerConfig controls the HTTP playground.
type ServerConfig struct {
	Addr            string `hcl:"addr,optional" yaml:"addr"`
	ReadTimeout     string `hcl:"read_timeout,optional" yaml:"read_timeout"`
	ShutdownTimeout string `hcl:"shutdown_timeout,optional" yaml:"shutdown_timeout"`
	// WatchConfig reloads the log level and cache capacity when the
	// config file changes.
	WatchConfig bool `hcl:"watch_config,optional" yaml:"watch_config"`
	// MaxBodyBytes caps the size of an /evaluate request body.
	MaxBodyBytes int64 `hcl:"max_body_bytes,optional" yaml:"max_body_bytes"`
}

// ReadTimeoutDuration returns ReadTimeout parsed. Validate guarantees it parses.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.ReadTimeout)
	return d
}

// ShutdownTimeoutDuration returns ShutdownTimeout parsed.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.ShutdownTimeout)
	return d
}

// EngineConfig controls compilation.
type EngineConfig struct {
	// CacheCapacity is the number of compiled expressions kept by the
	// playground and REPL. A negative value disables caching.
	CacheCapacity int `hcl:"cache_capacity,optional" yaml:"cache_capacity"`
	// MaxExpressionBytes rejects longer expressions at compile time.
	MaxExpressionBytes int `hcl:"max_expression_bytes,optional" yaml:"max_expression_bytes"`
	// MaintenanceSchedule is a cron expression for the serve-mode
	// maintenance job. "off" disables it.
	MaintenanceSchedule string `hcl:"maintenance_schedule,optional" yaml:"maintenance_schedule"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   *bool  `hcl:"enabled,optional" yaml:"enabled"`
	Namespace string `hcl:"namespace,optional" yaml:"namespace"`
	Subsystem string `hcl:"subsystem,optional" yaml:"subsystem"`
	// DurationBuckets are histogram buckets in seconds.
	DurationBuckets []float64 `hcl:"duration_buckets,optional" yaml:"duration_buckets"`
}

// IsEnabled reports whether metrics are collected. Unset means enabled.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// JournalConfig controls the SQLite evaluation journal used by the
// playground. An empty Path disables it.
type JournalConfig struct {
	Path string `hcl:"path,optional" yaml:"path"`
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	Driver string `hcl:"driver,optional" yaml:"driver"`
	// Retention is how long entries are kept by the maintenance job.
	Retention string `hcl:"retention,optional" yaml:"retention"`
}

// Enabled reports whether a journal path is configured.
func (j JournalConfig) Enabled() bool {
	return j.Path != ""
}

// RetentionDuration returns Retention parsed.
func (j JournalConfig) RetentionDuration() time.Duration {
	d, _ := time.ParseDuration(j.Retention)
	return d
}
