package config

import (
	"errors"
	"fmt"

	"github.com/parleychat/parley/internal/core"
)

var validLogLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"": true, "text": true, "json": true,
}

// Validate checks the structural validity of a Config.
// It verifies the version field, checks that all referenced module IDs
// exist in the registry, and validates the log settings. Modules with
// no config entry run on their defaults, so an empty modules map is
// allowed.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("config: invalid log level %q (debug, info, warn, error)", cfg.Log.Level))
	}
	if !validLogFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Errorf("config: invalid log format %q (text, json)", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
