// Package simulated implements the provider.simulated module: the
// canned-response adapter that answers when no real provider key is
// active. It is also the explicit fallback target for unknown provider
// names.
package simulated

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parleychat/parley/internal/core"
	"github.com/parleychat/parley/internal/provider"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ provider.Adapter  = (*Adapter)(nil)
)

// responses is the canned reply pool.
var responses = []string{
	"That's an interesting question! Let me think about that for a moment.",
	"I understand what you're asking. Here's what I think...",
	"Great question! Based on what you've shared, I'd suggest...",
	"I can help you with that. Let me provide some insights...",
	"That's a thoughtful inquiry. From my perspective...",
	"I appreciate you asking. Here's my take on this...",
	"Excellent point! I'd like to elaborate on that...",
	"I see what you mean. Let me break this down for you...",
	"That's worth exploring further. Consider this...",
	"Interesting perspective! I'd add that...",
}

// Config holds the configuration for the simulated provider module.
type Config struct {
	// MinDelay and MaxDelay bound the simulated thinking time.
	MinDelay string `yaml:"min_delay"`
	MaxDelay string `yaml:"max_delay"`
}

func (c *Config) defaults() {
	if c.MinDelay == "" {
		c.MinDelay = "1s"
	}
	if c.MaxDelay == "" {
		c.MaxDelay = "3s"
	}
}

func (c *Config) delays() (time.Duration, time.Duration, error) {
	minD, err := time.ParseDuration(c.MinDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("provider.simulated: invalid min_delay %q: %w", c.MinDelay, err)
	}
	maxD, err := time.ParseDuration(c.MaxDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("provider.simulated: invalid max_delay %q: %w", c.MaxDelay, err)
	}
	if maxD < minD {
		return 0, 0, fmt.Errorf("provider.simulated: max_delay %q below min_delay %q", c.MaxDelay, c.MinDelay)
	}
	return minD, maxD, nil
}

// Module wires the simulated adapter into the provider registry.
type Module struct {
	config  Config
	adapter *Adapter
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.simulated",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	minD, maxD, err := m.config.delays()
	if err != nil {
		return err
	}
	m.adapter = NewAdapter(minD, maxD)

	svc, ok := ctx.Service("provider.registry")
	if !ok {
		return fmt.Errorf("provider.simulated: provider registry service not available")
	}
	registry, ok := svc.(*provider.Registry)
	if !ok {
		return fmt.Errorf("provider.simulated: provider registry service has wrong type")
	}
	registry.Register(provider.KindSimulated, m.adapter)
	ctx.RegisterService("provider.simulated", m.adapter)

	return nil
}

// Adapter returns canned replies after a simulated thinking delay.
type Adapter struct {
	minDelay time.Duration
	maxDelay time.Duration
}

// NewAdapter creates an Adapter with the given delay bounds. Zero
// bounds answer immediately.
func NewAdapter(minDelay, maxDelay time.Duration) *Adapter {
	return &Adapter{minDelay: minDelay, maxDelay: maxDelay}
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return provider.NameSimulated }

// Complete implements provider.Adapter. Credentials and model are
// ignored; the delay is interruptible through the context.
func (a *Adapter) Complete(ctx context.Context, _ []provider.Turn, _, _ string) (string, error) {
	delay := a.minDelay
	if spread := a.maxDelay - a.minDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", provider.NewError(provider.NameSimulated, 0, ctx.Err())
		case <-timer.C:
		}
	}
	return responses[rand.Intn(len(responses))], nil
}
