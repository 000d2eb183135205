package chat

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Greeting is the assistant message every new session starts with.
const Greeting = "Hello! I'm your AI assistant. How can I help you today?"

// defaultStatusDelay is the simulated network hand-off before a user
// message transitions from sending to sent.
const defaultStatusDelay = 500 * time.Millisecond

// Store is the single source of truth for all chat sessions. Every
// mutation goes through it; it enforces the single-active-session
// invariant, publishes change events, and synchronizes each mutation to
// the persistence gateway. Gateway failures are logged and swallowed:
// the in-memory state stays authoritative for the process lifetime.
type Store struct {
	mu          sync.Mutex
	sessions    []*ChatSession
	activeID    string
	seq         int64
	typing      bool
	statusDelay time.Duration

	gateway  Gateway
	saveMu   sync.Mutex
	logger   *slog.Logger
	notifier *notifier
}

// StoreOption customizes store construction.
type StoreOption func(*Store)

// WithStatusDelay overrides the sending→sent transition delay.
// Used by tests to avoid real sleeps.
func WithStatusDelay(d time.Duration) StoreOption {
	return func(s *Store) { s.statusDelay = d }
}

// NewStore creates a Store backed by the given gateway. Call Load before use.
func NewStore(gateway Gateway, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		gateway:     gateway,
		logger:      logger.With("component", "chat"),
		notifier:    newNotifier(),
		statusDelay: defaultStatusDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores sessions from the gateway. When nothing is stored, or
// loading fails, a default session is created instead. The message ID
// counter resumes past the highest numeric ID seen so restored sessions
// never collide with new messages.
func (s *Store) Load(ctx context.Context) {
	sessions, err := s.gateway.LoadSessions(ctx)
	if err != nil {
		s.logger.Error("loading sessions failed, starting fresh", "error", err)
	}

	s.mu.Lock()
	s.sessions = nil
	s.activeID = ""
	if len(sessions) == 0 {
		s.initDefaultLocked()
		s.mu.Unlock()
		s.persist()
		s.notifier.publish(Event{Kind: EventSessions})
		return
	}

	active := ""
	for i := range sessions {
		sess := sessions[i].Clone()
		if sess.IsActive && active == "" {
			active = sess.ID
		} else {
			sess.IsActive = false
		}
		s.sessions = append(s.sessions, &sess)
		for _, m := range sess.Messages {
			if n, err := strconv.ParseInt(m.ID, 10, 64); err == nil && n > s.seq {
				s.seq = n
			}
		}
	}
	if active == "" {
		s.sessions[0].IsActive = true
		active = s.sessions[0].ID
	}
	s.activeID = active
	s.mu.Unlock()

	s.notifier.publish(Event{Kind: EventSessions})
}

// Subscribe registers a change-event subscriber. The returned cancel
// function must be called to release the subscription.
func (s *Store) Subscribe() (<-chan Event, func()) {
	return s.notifier.subscribe()
}

// AppendUserMessage appends a pending user message to the active session.
// The content is trimmed; empty content is rejected with ErrEmptyMessage
// before any state mutation. The message starts in StatusSending and
// transitions to StatusSent after a fixed delay — that transition never
// fails and is not retried.
func (s *Store) AppendUserMessage(content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	sess := s.activeLocked()
	if sess == nil {
		s.mu.Unlock()
		return Message{}, ErrNoActiveSession
	}

	msg := Message{
		ID:        s.nextIDLocked(),
		Content:   content,
		Timestamp: time.Now(),
		IsUser:    true,
		Status:    StatusSending,
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastActivity = msg.Timestamp
	sessionID := sess.ID
	s.mu.Unlock()

	s.persist()
	s.notifier.publish(Event{Kind: EventMessages, SessionID: sessionID})

	time.AfterFunc(s.statusDelay, func() {
		s.markStatus(sessionID, msg.ID, StatusSent)
	})

	return msg, nil
}

// AppendAssistantMessage appends an assistant message (StatusRead) to the
// active session and recomputes the session title. Never rejected.
func (s *Store) AppendAssistantMessage(content string) Message {
	s.mu.Lock()
	sess := s.activeLocked()
	if sess == nil {
		s.initDefaultLocked()
		sess = s.activeLocked()
	}

	msg := Message{
		ID:        s.nextIDLocked(),
		Content:   content,
		Timestamp: time.Now(),
		IsUser:    false,
		Status:    StatusRead,
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastActivity = msg.Timestamp
	sess.Title = DeriveTitle(sess.Messages)
	sessionID := sess.ID
	s.mu.Unlock()

	s.persist()
	s.notifier.publish(Event{Kind: EventMessages, SessionID: sessionID})
	s.notifier.publish(Event{Kind: EventSessions})

	return msg
}

// DeleteMessage removes the message with the given ID from the active
// session. No-op when the ID is unknown.
func (s *Store) DeleteMessage(id string) {
	s.mu.Lock()
	sess := s.activeLocked()
	if sess == nil {
		s.mu.Unlock()
		return
	}

	found := false
	for i := range sess.Messages {
		if sess.Messages[i].ID == id {
			sess.Messages = append(sess.Messages[:i], sess.Messages[i+1:]...)
			found = true
			break
		}
	}
	if found {
		sess.LastActivity = time.Now()
	}
	sessionID := sess.ID
	s.mu.Unlock()

	if found {
		s.persist()
		s.notifier.publish(Event{Kind: EventMessages, SessionID: sessionID})
	}
}

// CreateSession creates a fresh session with the standard greeting and a
// zeroed summary state, makes it the only active session, and returns its ID.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.IsActive = false
	}
	sess := s.newSessionLocked(uuid.NewString())
	s.sessions = append(s.sessions, sess)
	s.activeID = sess.ID
	s.mu.Unlock()

	s.persist()
	s.notifier.publish(Event{Kind: EventSessions})
	return sess.ID
}

// SwitchSession activates the session with the given ID, deactivating all
// others. Unknown IDs are a silent no-op.
func (s *Store) SwitchSession(id string) {
	s.mu.Lock()
	var target *ChatSession
	for _, sess := range s.sessions {
		if sess.ID == id {
			target = sess
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return
	}
	for _, sess := range s.sessions {
		sess.IsActive = sess.ID == id
	}
	s.activeID = id
	s.mu.Unlock()

	s.persist()
	s.notifier.publish(Event{Kind: EventSessions})
}

// DeleteSession removes a session. The durable delete is attempted first;
// if it fails the in-memory deletion proceeds anyway (the failure is
// logged). When the deleted session was active, the first remaining
// session becomes active, or a fresh default session is created when no
// sessions remain.
func (s *Store) DeleteSession(ctx context.Context, id string) {
	if err := s.gateway.DeleteSession(ctx, id); err != nil {
		s.logger.Error("durable session delete failed, removing from memory anyway",
			"session", id, "error", err)
	}

	s.mu.Lock()
	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	wasActive := s.sessions[idx].IsActive
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	if len(s.sessions) == 0 {
		s.initDefaultLocked()
	} else if wasActive {
		s.sessions[0].IsActive = true
		s.activeID = s.sessions[0].ID
	}
	s.mu.Unlock()

	s.persist()
	s.notifier.publish(Event{Kind: EventSessions})
}

// ClearActiveSessionMessages truncates the active session's message list.
// The session itself survives; its summary state is reset along with the
// transcript it described.
func (s *Store) ClearActiveSessionMessages() {
	s.mu.Lock()
	sess := s.activeLocked()
	if sess == nil {
		s.mu.Unlock()
		return
	}
	sess.Messages = nil
	sess.SummaryState = SessionSummaryState{}
	sess.LastActivity = time.Now()
	sessionID := sess.ID
	s.mu.Unlock()

	s.persist()
	s.notifier.publish(Event{Kind: EventMessages, SessionID: sessionID})
}

// SetTyping toggles the assistant typing indicator.
func (s *Store) SetTyping(v bool) {
	s.mu.Lock()
	changed := s.typing != v
	s.typing = v
	s.mu.Unlock()
	if changed {
		s.notifier.publish(Event{Kind: EventTyping})
	}
}

// Typing reports the assistant typing indicator.
func (s *Store) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// ActiveSession returns a deep copy of the active session.
func (s *Store) ActiveSession() (ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.activeLocked()
	if sess == nil {
		return ChatSession{}, false
	}
	return sess.Clone(), true
}

// Session returns a deep copy of the session with the given ID.
func (s *Store) Session(id string) (ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess.Clone(), true
		}
	}
	return ChatSession{}, false
}

// Sessions returns deep copies of all sessions in store order.
func (s *Store) Sessions() []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		result[i] = sess.Clone()
	}
	return result
}

// SummaryState returns the summary state for the given session.
func (s *Store) SummaryState(sessionID string) (SessionSummaryState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == sessionID {
			return sess.SummaryState, true
		}
	}
	return SessionSummaryState{}, false
}

// SetSummaryState replaces the summary state for the given session. Only
// the optimization engine calls this; the visible message list is never
// touched. Last write wins when callers race.
func (s *Store) SetSummaryState(sessionID string, state SessionSummaryState) {
	s.mu.Lock()
	for _, sess := range s.sessions {
		if sess.ID == sessionID {
			sess.SummaryState = state
			break
		}
	}
	s.mu.Unlock()
	s.persist()
}

// --- internal ---

func (s *Store) activeLocked() *ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == s.activeID {
			return sess
		}
	}
	return nil
}

func (s *Store) nextIDLocked() string {
	s.seq++
	return strconv.FormatInt(s.seq, 10)
}

// newSessionLocked builds a session seeded with the greeting message.
func (s *Store) newSessionLocked(id string) *ChatSession {
	return &ChatSession{
		ID:    id,
		Title: DefaultTitle,
		Messages: []Message{{
			ID:        s.nextIDLocked(),
			Content:   Greeting,
			Timestamp: time.Now(),
			IsUser:    false,
			Status:    StatusRead,
		}},
		LastActivity: time.Now(),
		IsActive:     true,
	}
}

func (s *Store) initDefaultLocked() {
	sess := s.newSessionLocked(uuid.NewString())
	s.sessions = append(s.sessions, sess)
	s.activeID = sess.ID
}

// markStatus applies a status transition to one message.
func (s *Store) markStatus(sessionID, messageID string, status Status) {
	s.mu.Lock()
	updated := false
	for _, sess := range s.sessions {
		if sess.ID != sessionID {
			continue
		}
		for i := range sess.Messages {
			if sess.Messages[i].ID == messageID {
				sess.Messages[i].Status = status
				updated = true
			}
		}
	}
	s.mu.Unlock()

	if updated {
		s.persist()
		s.notifier.publish(Event{Kind: EventMessages, SessionID: sessionID})
	}
}

// persist writes the full session set to the gateway. Failures are
// logged, never propagated: memory stays authoritative. saveMu keeps
// snapshots committing in the order they were taken, so durable state
// never regresses behind a concurrent mutation.
func (s *Store) persist() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snapshot := make([]ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		snapshot[i] = sess.Clone()
	}
	s.mu.Unlock()

	if err := s.gateway.SaveSessions(context.Background(), snapshot); err != nil {
		s.logger.Error("persisting sessions failed", "error", err)
	}
}
