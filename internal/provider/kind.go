package provider

import "sync"

// Kind is the closed set of supported providers. Dispatch is always over
// this enumeration, never over raw provider strings: names that do not
// match a known provider map to KindSimulated explicitly rather than
// silently falling through.
type Kind int

// Supported provider kinds.
const (
	KindSimulated Kind = iota
	KindGemini
	KindOpenAI
	KindAnthropic
)

// Display names as they appear in settings and the UI.
const (
	NameSimulated = "Simulated"
	NameGemini    = "Google Gemini"
	NameOpenAI    = "OpenAI"
	NameAnthropic = "Anthropic"
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case KindGemini:
		return NameGemini
	case KindOpenAI:
		return NameOpenAI
	case KindAnthropic:
		return NameAnthropic
	default:
		return NameSimulated
	}
}

// ParseKind maps a provider display name to its Kind. Unknown names map
// to KindSimulated.
func ParseKind(name string) Kind {
	switch name {
	case NameGemini:
		return KindGemini
	case NameOpenAI:
		return KindOpenAI
	case NameAnthropic:
		return KindAnthropic
	default:
		return KindSimulated
	}
}

// Registry maps provider kinds to their adapters. The zero value is
// usable; kinds without a registered adapter resolve to the simulated
// adapter when one is present.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Kind]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Kind]Adapter)}
}

// Register installs the adapter for a kind, replacing any previous one.
func (r *Registry) Register(kind Kind, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adapters == nil {
		r.adapters = make(map[Kind]Adapter)
	}
	r.adapters[kind] = adapter
}

// For resolves the adapter for a kind. Kinds without an adapter fall
// back to the simulated adapter; the second return reports whether any
// adapter was found.
func (r *Registry) For(kind Kind) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.adapters[kind]; ok {
		return a, true
	}
	a, ok := r.adapters[KindSimulated]
	return a, ok
}
