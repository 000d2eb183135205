// Package chat holds the canonical conversation state: the message and
// session data model, the in-memory store that owns it, and the persistence
// gateway contract the store synchronizes against.
package chat

import "time"

// Status tracks the delivery state of a user message. Assistant messages
// are created directly in StatusRead. The delivered state exists for
// display purposes but is never reached automatically.
type Status string

// Status values for message delivery tracking.
const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusError     Status = "error"
)

// Message is a single conversation entry. Messages are immutable once
// created except for Status transitions applied by the store.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsUser    bool      `json:"isUser"`
	Status    Status    `json:"status,omitempty"`

	// IsTyping marks an in-flight typing placeholder. Such entries are
	// presentation artifacts and never participate in history assembly.
	IsTyping bool `json:"isTyping,omitempty"`

	// IsSummary marks a generated conversation summary. Summary messages
	// live only in SessionSummaryState.CachedSummary; they are never part
	// of a session's visible message list.
	IsSummary       bool             `json:"isSummary,omitempty"`
	SummaryMetadata *SummaryMetadata `json:"summaryMetadata,omitempty"`
}

// Valid reports whether the message participates in request-history
// assembly: typing placeholders and messages in a transient or failed
// delivery state are excluded.
func (m Message) Valid() bool {
	if m.IsTyping {
		return false
	}
	return m.Status != StatusSending && m.Status != StatusError
}

// SummaryMetadata records the provenance of a generated summary.
type SummaryMetadata struct {
	// OriginalMessageIDs lists, in order, every message folded into this
	// summary. Each new summary version's scope is a strict superset of
	// the previous version's.
	OriginalMessageIDs []string  `json:"originalMessageIds"`
	SummaryVersion     int       `json:"summaryVersion"`
	CreatedAt          time.Time `json:"createdAt"`
	MessageCount       int       `json:"messageCount"`
	TokenEstimate      int       `json:"tokenEstimate,omitempty"`
}

// SessionSummaryState is the per-session bookkeeping for incremental
// summarization. It is mutated only by the context-optimization engine,
// never by message appends. CachedSummary is an API-assembly artifact:
// it must never be inserted into the session's message list.
type SessionSummaryState struct {
	LastSummarizedMessageID string    `json:"lastSummarizedMessageId,omitempty"`
	TotalSummarizedMessages int       `json:"totalSummarizedMessages"`
	SummaryVersion          int       `json:"summaryVersion"`
	LastOptimizationAt      time.Time `json:"lastOptimizationAt,omitzero"`
	CachedSummary           *Message  `json:"cachedSummary,omitempty"`
}

// ChatSession is one conversation. The visible transcript (Messages) is
// always complete and unmodified; only provider request payloads are
// optimized.
type ChatSession struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Messages     []Message           `json:"messages"`
	LastActivity time.Time           `json:"lastActivity"`
	IsActive     bool                `json:"isActive"`
	SummaryState SessionSummaryState `json:"summaryState"`
}

// ValidMessages returns the session's messages that participate in
// history assembly, in transcript order.
func (s *ChatSession) ValidMessages() []Message {
	result := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Valid() {
			result = append(result, m)
		}
	}
	return result
}

// Clone returns a deep copy of the session.
func (s *ChatSession) Clone() ChatSession {
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	if s.SummaryState.CachedSummary != nil {
		summary := *s.SummaryState.CachedSummary
		if summary.SummaryMetadata != nil {
			md := *summary.SummaryMetadata
			md.OriginalMessageIDs = append([]string(nil), md.OriginalMessageIDs...)
			summary.SummaryMetadata = &md
		}
		cp.SummaryState.CachedSummary = &summary
	}
	return cp
}
