// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for parley.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/parleychat/parley/internal/telemetry"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir overrides the default persistent data directory.
	DataDir string `yaml:"data_dir,omitempty"`

	// Log controls log output.
	Log LogConfig `yaml:"log,omitempty"`

	// Telemetry controls trace export. Disabled unless configured.
	Telemetry telemetry.Config `yaml:"telemetry,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "storage.sqlite").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// LogConfig controls the log handler.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Defaults to info.
	Level string `yaml:"level,omitempty"`

	// Format selects the handler: text or json. Defaults to text.
	Format string `yaml:"format,omitempty"`
}
