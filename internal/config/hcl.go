package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// HCLLoader reads configuration written in HCL native syntax:
//
//	log {
//	  level = "debug"
//	}
//	engine {
//	  cache_capacity = 512
//	}
type HCLLoader struct{}

// hclFile mirrors Config with optional blocks. Unknown blocks and
// attributes are rejected by gohcl.
type hclFile struct {
	Log     *LogConfig     `hcl:"log,block"`
	Server  *ServerConfig  `hcl:"server,block"`
	Engine  *EngineConfig  `hcl:"engine,block"`
	Metrics *MetricsConfig `hcl:"metrics,block"`
	Journal *JournalConfig `hcl:"journal,block"`
}

// Decode implements Loader.
func (HCLLoader) Decode(filename string, src []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if root.Log != nil {
		cfg.Log = *root.Log
	}
	if root.Server != nil {
		cfg.Server = *root.Server
	}
	if root.Engine != nil {
		cfg.Engine = *root.Engine
	}
	if root.Metrics != nil {
		cfg.Metrics = *root.Metrics
	}
	if root.Journal != nil {
		cfg.Journal = *root.Journal
	}
	return nil
}
