package anthropic

import (
	"fmt"
	"time"
)

// Config holds the configuration for the Anthropic provider module. API
// keys are supplied per call from the settings surface, not from config.
type Config struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
}

// defaults fills zero-valued fields with sensible defaults.
func (c *Config) defaults() {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
}

// parsedTimeout returns the timeout as a time.Duration.
// Assumes the value has been validated by validateTimeout.
func (c *Config) parsedTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// validateTimeout checks that the timeout string is a valid Go duration.
func (c *Config) validateTimeout() error {
	_, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("provider.anthropic: invalid timeout %q: %w", c.Timeout, err)
	}
	return nil
}
