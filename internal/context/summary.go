package ctxengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/provider"
)

const summaryInstruction = "Summarize the following conversation concisely, " +
	"preserving key facts, decisions, names, and any constraints the user stated. " +
	"Write the summary as plain prose. Respond with the summary only."

// buildSummary produces the next summary version covering scope, the
// valid messages that have aged out of the keep window. When the state
// already carries a cached summary, its text is folded into the prompt
// so the new version extends rather than replaces it, and the new scope
// is the union of the previous scope and the aged messages.
//
// The passed state is returned unchanged on any failure, including an
// empty completion.
func (e *Engine) buildSummary(ctx context.Context, sessionID string, state chat.SessionSummaryState, scope []chat.Message, backend Backend) (chat.SessionSummaryState, error) {
	version := state.SummaryVersion + 1
	ctx, span := e.tracer.Start(ctx, "ctxengine.buildSummary",
		trace.WithAttributes(spanAttrs(sessionID, version)...))
	defer span.End()

	prompt := summaryPrompt(state.CachedSummary, scope)

	text, err := backend.Adapter.Complete(ctx, []provider.Turn{provider.UserTurn(prompt)}, backend.Model, backend.APIKey)
	if err != nil {
		return state, fmt.Errorf("summarize session %s: %w", sessionID, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return state, fmt.Errorf("summarize session %s: empty completion", sessionID)
	}

	ids, added := unionIDs(state, scope)
	now := time.Now()
	summary := chat.Message{
		ID:        fmt.Sprintf("%s-summary-v%d", sessionID, version),
		Content:   text,
		Timestamp: now,
		IsUser:    false,
		Status:    chat.StatusRead,
		IsSummary: true,
		SummaryMetadata: &chat.SummaryMetadata{
			OriginalMessageIDs: ids,
			SummaryVersion:     version,
			CreatedAt:          now,
			MessageCount:       len(ids),
			TokenEstimate:      e.estimator.Estimate(text),
		},
	}

	metrics.SummariesTotal.Inc()
	e.logger.Debug("summary created",
		"session", sessionID, "version", version,
		"messages", len(ids), "added", added)

	next := state
	next.CachedSummary = &summary
	next.SummaryVersion = version
	next.TotalSummarizedMessages += added
	next.LastOptimizationAt = now
	if len(scope) > 0 {
		next.LastSummarizedMessageID = scope[len(scope)-1].ID
	}
	return next, nil
}

// summaryPrompt renders the summarization request as a single user turn:
// the instruction, the prior summary (if any) for continuity, and a
// speaker-labelled transcript of the messages being folded in.
func summaryPrompt(prior *chat.Message, scope []chat.Message) string {
	var b strings.Builder
	b.WriteString(summaryInstruction)
	if prior != nil {
		b.WriteString("\n\nSummary of the conversation so far:\n")
		b.WriteString(prior.Content)
		b.WriteString("\n\nNew messages to incorporate:")
	} else {
		b.WriteString("\n\nConversation:")
	}
	for _, m := range scope {
		if m.IsSummary {
			continue
		}
		b.WriteString("\n")
		if m.IsUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

// unionIDs merges the previous summary's scope with the newly aged
// messages, preserving order and dropping duplicates. added is the
// count of IDs not covered by the previous version.
func unionIDs(state chat.SessionSummaryState, scope []chat.Message) (ids []string, added int) {
	seen := make(map[string]struct{})
	if state.CachedSummary != nil && state.CachedSummary.SummaryMetadata != nil {
		for _, id := range state.CachedSummary.SummaryMetadata.OriginalMessageIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, m := range scope {
		if m.IsSummary {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		ids = append(ids, m.ID)
		added++
	}
	return ids, added
}

// formatSummaryTurn renders the cached summary as the assistant turn
// that opens an optimized request.
func formatSummaryTurn(text string) string {
	return "[Conversation Summary]\n" + text
}
