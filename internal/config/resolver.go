package config

import (
	"slices"
	"strings"
)

// defaultModules always load, with or without a config entry. Backup is
// opt-in: it only runs when the config names it.
var defaultModules = []string{
	"storage.sqlite",
	"provider.gemini",
	"provider.openai",
	"provider.anthropic",
	"provider.simulated",
	"gateway.http",
}

// namespaceOrder loads storage first so its gateway service exists
// before anything that persists through it, and the HTTP gateway last.
var namespaceOrder = map[string]int{
	"storage":  0,
	"provider": 1,
	"backup":   2,
	"gateway":  3,
}

// Resolve returns the module IDs to load: the default set merged with
// every module named in the configuration, in deterministic order.
func Resolve(cfg *Config) []string {
	seen := make(map[string]bool, len(defaultModules)+len(cfg.Modules))
	ids := make([]string, 0, len(defaultModules)+len(cfg.Modules))
	for _, id := range defaultModules {
		seen[id] = true
		ids = append(ids, id)
	}
	for id := range cfg.Modules {
		if !seen[id] {
			ids = append(ids, id)
		}
	}

	slices.SortFunc(ids, func(a, b string) int {
		pa, pb := namespacePriority(a), namespacePriority(b)
		if pa != pb {
			return pa - pb
		}
		return strings.Compare(a, b)
	})
	return ids
}

func namespacePriority(id string) int {
	ns, _, _ := strings.Cut(id, ".")
	if p, ok := namespaceOrder[ns]; ok {
		return p
	}
	return len(namespaceOrder)
}
