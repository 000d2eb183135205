package chat

import "sync"

// EventKind identifies which slice of store state changed.
type EventKind string

// Event kinds published by the store.
const (
	// EventMessages fires when a session's message list or a message
	// status changed.
	EventMessages EventKind = "messages"

	// EventSessions fires when the session list or the active session changed.
	EventSessions EventKind = "sessions"

	// EventTyping fires when the assistant typing indicator toggled.
	EventTyping EventKind = "typing"
)

// Event is a store change notification. The store is the sole publisher;
// subscribers re-read the state they care about on receipt.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"sessionId,omitempty"`
}

const subscriberBuffer = 16

// notifier fans store events out to subscribers. Slow subscribers drop
// events rather than block the store: events are invalidation signals,
// not a replayable log.
type notifier struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]chan Event)}
}

// subscribe registers a new subscriber and returns its channel plus a
// cancel function. The channel is closed on cancel.
func (n *notifier) subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Event, subscriberBuffer)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish delivers the event to every subscriber without blocking.
func (n *notifier) publish(evt Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
