// Package openai implements the provider.openai module: an OpenAI Chat
// Completions adapter for the chat core.
package openai

import (
	"errors"
	"log/slog"
	"net/http"

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
	_ core.Validator    = (*Module)(nil)
	_ provider.Adapter  = (*Adapter)(nil)
)

// Module wires the OpenAI adapter into the provider registry.
type Module struct {
	config  Config
	logger  *slog.Logger
	adapter *Adapter
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.openai",
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
	m.logger = ctx.Logger
	m.adapter = &Adapter{
		baseURL: m.config.BaseURL,
		client:  &http.Client{Timeout: m.config.parsedTimeout()},
	}

	svc, ok := ctx.Service("provider.registry")
	if !ok {
		return errors.New("provider.openai: provider registry service not available")
	}
	registry, ok := svc.(*provider.Registry)
	if !ok {
		return errors.New("provider.openai: provider registry service has wrong type")
	}
	registry.Register(provider.KindOpenAI, m.adapter)
	ctx.RegisterService("provider.openai", m.adapter)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.BaseURL == "" {
		return errors.New("provider.openai: base_url is required")
	}
	return m.config.validateTimeout()
}
