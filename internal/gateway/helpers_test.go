package gateway

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/parleychat/parley/internal/agent"
	"github.com/parleychat/parley/internal/chat"
	ctxengine "github.com/parleychat/parley/internal/context"
	"github.com/parleychat/parley/internal/core"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/provider/providertest"
	"github.com/parleychat/parley/internal/settings"
	"github.com/parleychat/parley/internal/storage"
)

// fixture wires a gateway against in-memory collaborators and serves
// its router from an httptest server.
type fixture struct {
	gw       *Gateway
	store    *chat.Store
	settings *settings.Store
	registry *provider.Registry
	adapter  *providertest.Adapter
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := storage.NewMemoryGateway()
	store := chat.NewStore(mem, slog.Default(), chat.WithStatusDelay(0))
	store.Load(context.Background())

	st := settings.NewStore(mem, nil)
	st.Load(context.Background())

	registry := provider.NewRegistry()
	adapter := &providertest.Adapter{
		Responses:   []string{"test reply"},
		AdapterName: provider.NameSimulated,
	}
	registry.Register(provider.KindSimulated, adapter)

	engine := ctxengine.NewEngine(store, nil, st, nil)
	responder := agent.NewResponder(store, st, registry, engine, nil)

	appCtx := core.NewAppContext(slog.Default(), t.TempDir())
	appCtx.RegisterService("provider.registry", registry)

	gw := &Gateway{
		appCtx:    appCtx,
		logger:    slog.Default(),
		store:     store,
		responder: responder,
		settings:  st,
		durable:   mem,
	}
	gw.config.defaults()

	server := httptest.NewServer(gw.buildRouter())
	t.Cleanup(server.Close)

	return &fixture{
		gw:       gw,
		store:    store,
		settings: st,
		registry: registry,
		adapter:  adapter,
		server:   server,
	}
}
