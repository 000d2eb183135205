package ctxengine

import (
	"fmt"
	"sync"
	"time"

	"github.com/parleychat/parley/internal/chat"
)

// recordingStore captures every SetSummaryState call.
type recordingStore struct {
	mu    sync.Mutex
	calls []stateCall
}

type stateCall struct {
	SessionID string
	State     chat.SessionSummaryState
}

func (s *recordingStore) SetSummaryState(sessionID string, state chat.SessionSummaryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stateCall{SessionID: sessionID, State: state})
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *recordingStore) last() stateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

// testSession builds a session with n valid messages, alternating
// user/assistant starting with user, IDs "1".."n".
func testSession(n int) chat.ChatSession {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]chat.Message, 0, n)
	for i := 1; i <= n; i++ {
		isUser := i%2 == 1
		status := chat.StatusRead
		if isUser {
			status = chat.StatusSent
		}
		msgs = append(msgs, chat.Message{
			ID:        fmt.Sprintf("%d", i),
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			IsUser:    isUser,
			Status:    status,
		})
	}
	return chat.ChatSession{
		ID:       "session-1",
		Title:    "Test",
		Messages: msgs,
		IsActive: true,
	}
}
