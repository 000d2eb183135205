// Package ctxengine implements conversation-history optimization: it
// decides when prior turns must be folded into a running summary, builds
// that summary incrementally by delegating text generation to the active
// provider adapter, and assembles the bounded turn list sent with every
// request. The visible transcript is never touched — only the request
// payload is optimized.
package ctxengine

import "strings"

// OptimizeConfig holds the tuning knobs for history optimization.
// Values are read at call time from the settings surface.
type OptimizeConfig struct {
	// Trigger is the minimum valid-message count before optimization
	// activates.
	Trigger int

	// Keep is the number of most-recent messages always sent verbatim.
	Keep int

	// Enabled turns optimization off entirely when false.
	Enabled bool
}

// DefaultConfig returns the standard optimization configuration.
func DefaultConfig() OptimizeConfig {
	return OptimizeConfig{Trigger: 8, Keep: 6, Enabled: true}
}

// withDefaults returns a copy of cfg with zero-valued counts replaced.
func (cfg OptimizeConfig) withDefaults() OptimizeConfig {
	if cfg.Trigger == 0 {
		cfg.Trigger = 8
	}
	if cfg.Keep == 0 {
		cfg.Keep = 6
	}
	return cfg
}

// ConfigSource supplies the optimization configuration on demand.
// Implemented by the settings store.
type ConfigSource interface {
	OptimizeConfig() OptimizeConfig
}

// StaticConfig is a ConfigSource returning a fixed configuration.
type StaticConfig OptimizeConfig

// OptimizeConfig implements ConfigSource.
func (c StaticConfig) OptimizeConfig() OptimizeConfig { return OptimizeConfig(c) }

// EligibleModel reports whether the model belongs to a family for which
// optimization pays off: the large-context but cost-sensitive Gemini
// models. Other models always receive the plain history.
func EligibleModel(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}
