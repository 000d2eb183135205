package ctxengine

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/provider"
)

// SummaryStore is the slice of the chat store the engine mutates: the
// per-session summary state, and nothing else. The visible message list
// is out of reach by construction.
type SummaryStore interface {
	SetSummaryState(sessionID string, state chat.SessionSummaryState)
}

// Backend identifies the provider selected for the current conversation.
// The same backend generates summaries and answers.
type Backend struct {
	Adapter provider.Adapter
	Model   string
	APIKey  string
}

// Engine assembles the bounded turn list for each outgoing request,
// creating or extending the session's cached summary when the history
// has grown past the trigger.
type Engine struct {
	store     SummaryStore
	estimator TokenEstimator
	source    ConfigSource
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewEngine creates an Engine. A nil estimator defaults to the standard
// char-based estimator; a nil source uses the default configuration.
func NewEngine(store SummaryStore, estimator TokenEstimator, source ConfigSource, logger *slog.Logger) *Engine {
	if estimator == nil {
		estimator = NewCharEstimator(0)
	}
	if source == nil {
		source = StaticConfig(DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		estimator: estimator,
		source:    source,
		logger:    logger.With("component", "ctxengine"),
		tracer:    otel.Tracer("parley/ctxengine"),
	}
}

// AssembleTurns produces the ordered turn list for the next request from
// the session's valid history plus the new outgoing user turn.
//
// When optimization is off, the model is not in an eligible family, or
// the history is short, every valid message maps straight to a turn.
// Otherwise the engine keeps the most recent messages verbatim, folds
// the older prefix into the session's cached summary (incrementally —
// an existing summary is extended, never rebuilt from scratch), and
// emits [summary turn, recent turns..., new user turn].
//
// Summarization failure never propagates: the engine logs it, leaves
// the summary state untouched, and returns the full unoptimized list
// for this call only. The trigger condition is re-evaluated next call.
func (e *Engine) AssembleTurns(ctx context.Context, session chat.ChatSession, newUserMessage string, backend Backend) []provider.Turn {
	cfg := e.source.OptimizeConfig().withDefaults()
	valid := session.ValidMessages()
	newTurn := provider.UserTurn(newUserMessage)

	// Plain path. A keep window at or above the trigger would make the
	// aging analysis vacuous, so it is treated as optimization-off too
	// (settings reject such configurations at update time).
	if !cfg.Enabled ||
		!EligibleModel(backend.Model) ||
		cfg.Keep >= cfg.Trigger ||
		len(valid) <= cfg.Trigger ||
		len(valid) <= cfg.Keep {
		return plainTurns(valid, newTurn)
	}

	recent := valid[len(valid)-cfg.Keep:]
	prefix := valid[:len(valid)-cfg.Keep]
	state := session.SummaryState

	if e.summaryNeeded(cfg, valid, prefix, state) {
		newState, err := e.buildSummary(ctx, session.ID, state, prefix, backend)
		if err != nil {
			metrics.SummaryFallbacksTotal.Inc()
			e.logger.Warn("summarization failed, sending unoptimized history",
				"session", session.ID, "error", err)
			return plainTurns(valid, newTurn)
		}
		state = newState
		e.store.SetSummaryState(session.ID, state)
	}

	if state.CachedSummary == nil {
		return plainTurns(valid, newTurn)
	}

	turns := make([]provider.Turn, 0, len(recent)+2)
	turns = append(turns, provider.AssistantTurn(formatSummaryTurn(state.CachedSummary.Content)))
	for _, m := range recent {
		if m.IsSummary {
			continue
		}
		turns = append(turns, turnFor(m))
	}
	return append(turns, newTurn)
}

// summaryNeeded decides whether a new summary version must be produced.
//
// Without a cached summary, any non-empty prefix needs one. With a
// cached summary, the messages that have aged out of the keep window
// since the last summarization are counted; a new version is produced
// once they reach trigger/2.
func (e *Engine) summaryNeeded(cfg OptimizeConfig, valid, prefix []chat.Message, state chat.SessionSummaryState) bool {
	if state.CachedSummary == nil {
		return len(prefix) > 0
	}

	last := -1
	for i := range valid {
		if valid[i].ID == state.LastSummarizedMessageID {
			last = i
			break
		}
	}

	// Messages strictly after the last summarized one, excluding the
	// trailing keep window. A missing anchor (message deleted since the
	// last round) counts the whole prefix as aging.
	aging := len(prefix) - (last + 1)
	if aging < 0 {
		aging = 0
	}
	return aging >= cfg.Trigger/2
}

func plainTurns(valid []chat.Message, newTurn provider.Turn) []provider.Turn {
	turns := make([]provider.Turn, 0, len(valid)+1)
	for _, m := range valid {
		if m.IsSummary {
			continue
		}
		turns = append(turns, turnFor(m))
	}
	return append(turns, newTurn)
}

func turnFor(m chat.Message) provider.Turn {
	if m.IsUser {
		return provider.UserTurn(m.Content)
	}
	return provider.AssistantTurn(m.Content)
}

func spanAttrs(sessionID string, version int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("session.id", sessionID),
		attribute.Int("summary.version", version),
	}
}
