package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/exprbridge/internal/ctxlog"
)

// Loader decodes one configuration format into a Config.
type Loader interface {
	// Decode parses src into cfg. filename is used only for diagnostics.
	Decode(filename string, src []byte, cfg *Config) error
}

// LoaderFor picks a Loader by file extension.
func LoaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return HCLLoader{}, nil
	case ".yaml", ".yml":
		return YAMLLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (want .hcl, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads the file at path, applies defaults and environment overrides,
// and validates the result. An empty path yields the defaults with
// environment overrides applied.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, os.LookupEnv)
}

func load(ctx context.Context, path string, lookup func(string) (string, bool)) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := &Config{}

	if path != "" {
		loader, err := LoaderFor(path)
		if err != nil {
			return nil, err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := loader.Decode(path, src, cfg); err != nil {
			return nil, err
		}
		logger.Debug("Config file decoded.", "path", path, "loader", fmt.Sprintf("%T", loader))
	}

	ApplyDefaults(cfg)
	if err := applyEnvOverrides(cfg, lookup); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
