package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// varPattern matches ${NAME} and ${NAME:-fallback} placeholders.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads path, substitutes environment placeholders, and decodes
// the YAML into a Config.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded, err := substituteEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// substituteEnv resolves ${NAME} placeholders against the environment.
// A name with no value and no :-fallback is an error; all such names
// are reported together.
func substituteEnv(raw []byte) ([]byte, error) {
	var missing []error

	out := varPattern.ReplaceAllFunc(raw, func(m []byte) []byte {
		groups := varPattern.FindSubmatch(m)
		name := string(groups[1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if groups[2] != nil {
			return groups[2]
		}
		missing = append(missing, fmt.Errorf("unresolved variable %s", name))
		return m
	})

	return out, errors.Join(missing...)
}