// Package gateway implements the gateway.http module: the HTTP/WebSocket
// API the browser UI talks to. It exposes session and message endpoints,
// the settings surface, data export/import, health/status, Prometheus
// metrics, and a WebSocket event stream mirroring store changes.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parleychat/parley/internal/agent"
	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/core"
	"github.com/parleychat/parley/internal/settings"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// Gateway is the HTTP gateway module. It is a leaf module — nothing
// imports it; it resolves its collaborators from the service registry.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	store     *chat.Store
	responder *agent.Responder
	settings  *settings.Store
	durable   chat.Gateway
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the
// service registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	if svc, ok := g.appCtx.Service("chat.store"); ok {
		if store, ok := svc.(*chat.Store); ok {
			g.store = store
		}
	}
	if svc, ok := g.appCtx.Service("agent.responder"); ok {
		if responder, ok := svc.(*agent.Responder); ok {
			g.responder = responder
		}
	}
	if svc, ok := g.appCtx.Service("settings.store"); ok {
		if st, ok := svc.(*settings.Store); ok {
			g.settings = st
		}
	}
	if svc, ok := g.appCtx.Service("storage.gateway"); ok {
		if gw, ok := svc.(chat.Gateway); ok {
			g.durable = gw
		}
	}
	if g.store == nil {
		return errors.New("gateway: chat.store service not available")
	}

	g.startedAt = time.Now()

	// No server-level write timeout: /api/events holds its connection
	// open for the client's whole visit. Plain routes get a per-request
	// write deadline from the router instead.
	g.server = &http.Server{
		Addr:              g.config.Bind,
		Handler:           g.buildRouter(),
		ReadHeaderTimeout: g.config.ReadTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}
