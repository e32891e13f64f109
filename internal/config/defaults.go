package config

// Default values applied to unset fields.
const (
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultServerAddr         = ":8080"
	DefaultReadTimeout        = "10s"
	DefaultShutdownTimeout    = "5s"
	DefaultMaxBodyBytes       = 1 << 20
	DefaultCacheCapacity      = 256
	DefaultMaxExpressionBytes = 64 << 10
	DefaultMetricsNamespace   = "exprbridge"
	DefaultMetricsSubsystem   = "engine"
	DefaultMaintenance        = "@every 1m"
	DefaultJournalDriver      = "sqlite"
	DefaultJournalRetention   = "168h"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields of cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.ReadTimeout == "" {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Engine.CacheCapacity == 0 {
		cfg.Engine.CacheCapacity = DefaultCacheCapacity
	}
	if cfg.Engine.MaxExpressionBytes == 0 {
		cfg.Engine.MaxExpressionBytes = DefaultMaxExpressionBytes
	}

	if cfg.Engine.MaintenanceSchedule == "" {
		cfg.Engine.MaintenanceSchedule = DefaultMaintenance
	}

	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = DefaultJournalDriver
	}
	if cfg.Journal.Retention == "" {
		cfg.Journal.Retention = DefaultJournalRetention
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		// Expression evaluation sits in the microsecond to millisecond range.
		cfg.Metrics.DurationBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.1}
	}
}
