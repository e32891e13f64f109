package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLLoader reads configuration written in YAML. Unknown keys are errors.
type YAMLLoader struct{}

// Decode implements Loader.
func (YAMLLoader) Decode(filename string, src []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}
	return nil
}
