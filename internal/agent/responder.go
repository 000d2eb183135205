// Package agent drives the send pipeline: accept the user message, mark
// the assistant as typing, assemble the optimized turn list, call the
// active provider, and append the reply.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/parleychat/parley/internal/chat"
	ctxengine "github.com/parleychat/parley/internal/context"
	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/settings"
)

// Responder wires the chat store, settings, provider registry, and the
// context-optimization engine into the send pipeline. Sends on the same
// session are serialized; concurrent sends on different sessions proceed
// independently.
type Responder struct {
	store    *chat.Store
	settings *settings.Store
	registry *provider.Registry
	engine   *ctxengine.Engine
	logger   *slog.Logger
	tracer   trace.Tracer

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewResponder creates a Responder.
func NewResponder(store *chat.Store, st *settings.Store, registry *provider.Registry, engine *ctxengine.Engine, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		store:    store,
		settings: st,
		registry: registry,
		engine:   engine,
		logger:   logger.With("component", "agent"),
		tracer:   otel.Tracer("parley/agent"),
		sessions: make(map[string]*sync.Mutex),
	}
}

// Send runs the full pipeline for one user message against the active
// session and returns the assistant's reply. Empty content is rejected
// with chat.ErrEmptyMessage before any state changes.
//
// Provider failures do not fail the call: an apologetic assistant
// message is appended instead and the underlying error is returned
// alongside it for callers that want to surface details.
func (r *Responder) Send(ctx context.Context, content string) (chat.Message, error) {
	active, ok := r.store.ActiveSession()
	if !ok {
		return chat.Message{}, chat.ErrNoActiveSession
	}

	lock := r.sessionLock(active.ID)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := r.tracer.Start(ctx, "agent.Send",
		trace.WithAttributes(attribute.String("session.id", active.ID)))
	defer span.End()

	userMsg, err := r.store.AppendUserMessage(content)
	if err != nil {
		return chat.Message{}, err
	}
	metrics.MessagesTotal.Inc()

	r.store.SetTyping(true)
	defer r.store.SetTyping(false)

	adapter, key := r.resolveBackend()
	backend := ctxengine.Backend{
		Adapter: adapter,
		Model:   key.EffectiveModel(),
		APIKey:  key.Key,
	}

	// Re-read so the engine sees the session exactly as persisted. The
	// just-appended message is still in sending state and therefore not
	// part of the valid history; its content rides along as the new turn.
	session, ok := r.store.Session(active.ID)
	if !ok {
		return chat.Message{}, chat.ErrNoActiveSession
	}
	turns := r.engine.AssembleTurns(ctx, session, userMsg.Content, backend)

	start := time.Now()
	text, err := adapter.Complete(ctx, turns, backend.Model, backend.APIKey)
	metrics.CompletionSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(adapter.Name()).Inc()
		span.RecordError(err)
		r.logger.Error("completion failed",
			"session", active.ID, "provider", adapter.Name(), "error", err)
		reply := r.store.AppendAssistantMessage(errorReply(adapter.Name()))
		return reply, err
	}

	metrics.CompletionsTotal.WithLabelValues(adapter.Name()).Inc()
	return r.store.AppendAssistantMessage(text), nil
}

// resolveBackend picks the adapter and credentials for the current send.
// Without an active key, or when the key's provider has no adapter, the
// simulated provider answers.
func (r *Responder) resolveBackend() (provider.Adapter, settings.APIKey) {
	key, ok := r.settings.Active()
	if !ok {
		key = settings.APIKey{Provider: provider.NameSimulated}
	}
	adapter, ok := r.registry.For(key.Kind())
	if !ok {
		adapter = noopAdapter{}
	}
	return adapter, key
}

func (r *Responder) sessionLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.sessions[id]
	if !ok {
		lock = &sync.Mutex{}
		r.sessions[id] = lock
	}
	return lock
}

func errorReply(providerName string) string {
	return fmt.Sprintf("Sorry, I couldn't get a response from %s. Please check your API key in settings and try again.", providerName)
}

// noopAdapter answers when not even the simulated provider is registered.
type noopAdapter struct{}

func (noopAdapter) Name() string { return provider.NameSimulated }

func (noopAdapter) Complete(context.Context, []provider.Turn, string, string) (string, error) {
	return "No provider is configured. Add an API key in settings to start chatting.", nil
}
