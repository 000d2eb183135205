package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parleychat/parley/internal/agent"
	"github.com/parleychat/parley/internal/chat"
	ctxengine "github.com/parleychat/parley/internal/context"
	"github.com/parleychat/parley/internal/core"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/secret"
	"github.com/parleychat/parley/internal/settings"
)

// wireChat assembles the chat core on top of the provisioned modules:
// the session store, settings store, context engine, and responder.
// Must be called after LoadModules and before Start.
func wireChat(appCtx *core.AppContext, logger *slog.Logger, redactor *secret.Redactor) error {
	svc, ok := appCtx.Service("storage.gateway")
	if !ok {
		return fmt.Errorf("wiring chat: storage.gateway service not available")
	}
	gateway, ok := svc.(chat.Gateway)
	if !ok {
		return fmt.Errorf("wiring chat: storage.gateway service has unexpected type %T", svc)
	}

	svc, ok = appCtx.Service("provider.registry")
	if !ok {
		return fmt.Errorf("wiring chat: provider.registry service not available")
	}
	registry, ok := svc.(*provider.Registry)
	if !ok {
		return fmt.Errorf("wiring chat: provider.registry service has unexpected type %T", svc)
	}

	store := chat.NewStore(gateway, logger)
	store.Load(context.Background())

	st := settings.NewStore(gateway, logger)
	st.Load(context.Background())

	// Stored key material must never appear in logs, even when a
	// provider echoes it inside an error message.
	st.NotifyKeys(func(keys []settings.APIKey) {
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = k.Key
		}
		redactor.SetLiterals(values)
	})

	engine := ctxengine.NewEngine(store, nil, st, logger)
	responder := agent.NewResponder(store, st, registry, engine, logger)

	appCtx.RegisterService("chat.store", store)
	appCtx.RegisterService("settings.store", st)
	appCtx.RegisterService("agent.responder", responder)

	logger.Info("chat core wired",
		"sessions", len(store.Sessions()), "keys", len(st.APIKeys()))
	return nil
}
