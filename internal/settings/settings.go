// Package settings owns the user-facing configuration surface: the
// provider API key entries and the history-optimization knobs. State is
// persisted through the chat persistence gateway's settings contract and
// read back on startup.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parleychat/parley/internal/chat"
	ctxengine "github.com/parleychat/parley/internal/context"
	"github.com/parleychat/parley/internal/provider"
)

// Settings keys as stored through the persistence gateway.
const (
	keyAPIKeys      = "llm-api-keys"
	keyOptimization = "optimization"
)

// Validation errors.
var (
	ErrKeyNotFound        = errors.New("settings: api key not found")
	ErrKeepExceedsTrigger = errors.New("settings: keep window must be smaller than the trigger threshold")
	ErrInvalidThreshold   = errors.New("settings: trigger and keep must be positive")
)

// TestStatus is the outcome of the most recent key probe.
type TestStatus string

// Test statuses.
const (
	TestUntested TestStatus = "untested"
	TestSuccess  TestStatus = "success"
	TestError    TestStatus = "error"
)

// APIKey is one configured provider credential. At most one entry is
// active at a time; when none is active the simulated provider answers.
type APIKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Provider   string     `json:"provider"`
	Key        string     `json:"apiKey"`
	Model      string     `json:"model,omitempty"`
	Active     bool       `json:"isActive"`
	LastTested time.Time  `json:"lastTested,omitzero"`
	TestStatus TestStatus `json:"testStatus,omitempty"`
}

// Kind maps the entry's provider display name onto the closed provider
// enumeration.
func (k APIKey) Kind() provider.Kind {
	return provider.ParseKind(k.Provider)
}

// EffectiveModel returns the entry's model, falling back to the
// provider's default when unset.
func (k APIKey) EffectiveModel() string {
	if k.Model != "" {
		return k.Model
	}
	switch k.Kind() {
	case provider.KindGemini:
		return "gemini-2.5-flash"
	case provider.KindOpenAI:
		return "gpt-4o-mini"
	case provider.KindAnthropic:
		return "claude-3-haiku-20240307"
	default:
		return ""
	}
}

// Optimization holds the history-optimization knobs.
type Optimization struct {
	Enabled bool `json:"enabled"`
	Trigger int  `json:"triggerThreshold"`
	Keep    int  `json:"keepRecent"`
}

// DefaultOptimization returns the standard knob values.
func DefaultOptimization() Optimization {
	return Optimization{Enabled: true, Trigger: 8, Keep: 6}
}

// Store is the settings state holder. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	keys    []APIKey
	opt     Optimization
	gateway chat.Gateway
	logger  *slog.Logger
	onKeys  func([]APIKey)
}

var _ ctxengine.ConfigSource = (*Store)(nil)

// NewStore creates a settings store backed by the given gateway.
// Call Load before use.
func NewStore(gateway chat.Gateway, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		gateway: gateway,
		opt:     DefaultOptimization(),
		logger:  logger.With("component", "settings"),
	}
}

// Load restores persisted settings. Missing or unreadable entries fall
// back to defaults; failures are logged, never fatal.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.notifyKeys()
	}()

	s.keys = nil
	s.opt = DefaultOptimization()

	if raw, err := s.gateway.LoadSetting(ctx, keyAPIKeys); err != nil {
		s.logger.Error("loading api keys failed", "error", err)
	} else if len(raw) > 0 {
		var keys []APIKey
		if err := json.Unmarshal(raw, &keys); err != nil {
			s.logger.Error("decoding api keys failed", "error", err)
		} else {
			s.keys = keys
		}
	}

	if raw, err := s.gateway.LoadSetting(ctx, keyOptimization); err != nil {
		s.logger.Error("loading optimization settings failed", "error", err)
	} else if len(raw) > 0 {
		var opt Optimization
		if err := json.Unmarshal(raw, &opt); err != nil {
			s.logger.Error("decoding optimization settings failed", "error", err)
		} else if opt.Trigger > 0 && opt.Keep > 0 && opt.Keep < opt.Trigger {
			s.opt = opt
		} else {
			s.logger.Warn("stored optimization settings invalid, using defaults",
				"trigger", opt.Trigger, "keep", opt.Keep)
		}
	}
}

// APIKeys returns a copy of all configured keys.
func (s *Store) APIKeys() []APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]APIKey(nil), s.keys...)
}

// Active returns the active key, if any.
func (s *Store) Active() (APIKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.Active {
			return k, true
		}
	}
	return APIKey{}, false
}

// AddKey stores a new key entry. A missing ID is generated. The first
// key added becomes active automatically.
func (s *Store) AddKey(k APIKey) APIKey {
	s.mu.Lock()
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	if k.TestStatus == "" {
		k.TestStatus = TestUntested
	}
	if len(s.keys) == 0 {
		k.Active = true
	} else if k.Active {
		for i := range s.keys {
			s.keys[i].Active = false
		}
	}
	s.keys = append(s.keys, k)
	s.mu.Unlock()

	s.persistKeys(context.Background())
	return k
}

// UpdateKey replaces the entry with a matching ID. Changing the key
// material resets its test status.
func (s *Store) UpdateKey(k APIKey) error {
	s.mu.Lock()
	idx := s.indexLocked(k.ID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrKeyNotFound
	}
	if s.keys[idx].Key != k.Key {
		k.TestStatus = TestUntested
		k.LastTested = time.Time{}
	}
	k.Active = s.keys[idx].Active
	s.keys[idx] = k
	s.mu.Unlock()

	s.persistKeys(context.Background())
	return nil
}

// DeleteKey removes the entry with the given ID. Deleting the active
// key promotes the first remaining key so completions keep flowing
// through a configured provider.
func (s *Store) DeleteKey(id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrKeyNotFound
	}
	wasActive := s.keys[idx].Active
	s.keys = append(s.keys[:idx], s.keys[idx+1:]...)
	if wasActive && len(s.keys) > 0 {
		s.keys[0].Active = true
	}
	s.mu.Unlock()

	s.persistKeys(context.Background())
	return nil
}

// ToggleKey flips the active flag on one entry. Activating a key
// deactivates every other; deactivating the active key leaves no key
// active and completions fall back to the simulated provider.
func (s *Store) ToggleKey(id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrKeyNotFound
	}
	if s.keys[idx].Active {
		s.keys[idx].Active = false
	} else {
		for i := range s.keys {
			s.keys[i].Active = i == idx
		}
	}
	s.mu.Unlock()

	s.persistKeys(context.Background())
	return nil
}

// TestKey probes the entry's provider with a one-turn completion and
// records the outcome on the entry.
func (s *Store) TestKey(ctx context.Context, id string, registry *provider.Registry) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrKeyNotFound
	}
	key := s.keys[idx]
	s.mu.Unlock()

	adapter, ok := registry.For(key.Kind())
	status := TestError
	var probeErr error
	if !ok {
		probeErr = ErrKeyNotFound
	} else {
		turns := []provider.Turn{provider.UserTurn("Test")}
		_, probeErr = adapter.Complete(ctx, turns, key.EffectiveModel(), key.Key)
		if probeErr == nil {
			status = TestSuccess
		}
	}

	s.mu.Lock()
	if idx = s.indexLocked(id); idx >= 0 {
		s.keys[idx].TestStatus = status
		s.keys[idx].LastTested = time.Now()
	}
	s.mu.Unlock()

	s.persistKeys(context.Background())
	return probeErr
}

// Optimization returns the current optimization knobs.
func (s *Store) Optimization() Optimization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opt
}

// SetOptimization validates and stores new knob values. A keep window at
// or above the trigger threshold is rejected: it would leave the aging
// analysis nothing to work with.
func (s *Store) SetOptimization(opt Optimization) error {
	if opt.Trigger <= 0 || opt.Keep <= 0 {
		return ErrInvalidThreshold
	}
	if opt.Keep >= opt.Trigger {
		return ErrKeepExceedsTrigger
	}

	s.mu.Lock()
	s.opt = opt
	s.mu.Unlock()

	raw, err := json.Marshal(opt)
	if err != nil {
		s.logger.Error("encoding optimization settings failed", "error", err)
		return nil
	}
	if err := s.gateway.SaveSetting(context.Background(), keyOptimization, raw); err != nil {
		s.logger.Error("persisting optimization settings failed", "error", err)
	}
	return nil
}

// OptimizeConfig implements ctxengine.ConfigSource: the engine reads
// the knobs fresh on every call.
func (s *Store) OptimizeConfig() ctxengine.OptimizeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ctxengine.OptimizeConfig{
		Trigger: s.opt.Trigger,
		Keep:    s.opt.Keep,
		Enabled: s.opt.Enabled,
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.keys {
		if s.keys[i].ID == id {
			return i
		}
	}
	return -1
}

// NotifyKeys registers a callback invoked with a copy of the key set
// after every key mutation and after Load. The wiring layer uses it to
// keep the log redactor in sync with stored key material.
func (s *Store) NotifyKeys(fn func([]APIKey)) {
	s.mu.Lock()
	s.onKeys = fn
	keys := append([]APIKey(nil), s.keys...)
	s.mu.Unlock()
	if fn != nil {
		fn(keys)
	}
}

func (s *Store) notifyKeys() {
	s.mu.Lock()
	fn := s.onKeys
	keys := append([]APIKey(nil), s.keys...)
	s.mu.Unlock()
	if fn != nil {
		fn(keys)
	}
}

func (s *Store) persistKeys(ctx context.Context) {
	s.mu.Lock()
	raw, err := json.Marshal(s.keys)
	s.mu.Unlock()
	defer s.notifyKeys()
	if err != nil {
		s.logger.Error("encoding api keys failed", "error", err)
		return
	}
	if err := s.gateway.SaveSetting(ctx, keyAPIKeys, raw); err != nil {
		s.logger.Error("persisting api keys failed", "error", err)
	}
}
