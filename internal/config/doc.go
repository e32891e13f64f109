// Package config defines the application configuration and the loaders that
// read it from disk.
//
// Configuration may be written in HCL or YAML; the loader is chosen by file
// extension. Loading always runs the same sequence: decode the file, apply
// defaults, apply EXPRBRIDGE_* environment overrides, validate.
package config
