package chat

import "sync"

// Window is a bounded conversation history. Messages append at the tail;
// when the window exceeds its maximum, the oldest messages are evicted
// from the head. All methods are safe for concurrent use.
type Window struct {
	mu          sync.Mutex
	maxMessages int
	messages    []Message
}

// NewWindow creates a Window holding at most maxMessages messages.
// A non-positive maximum is treated as 1.
func NewWindow(maxMessages int) *Window {
	if maxMessages < 1 {
		maxMessages = 1
	}
	return &Window{maxMessages: maxMessages}
}

// Append adds message at the tail, evicting from the head until the
// window is back within its maximum.
func (w *Window) Append(message Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.messages = append(w.messages, message)
	if excess := len(w.messages) - w.maxMessages; excess > 0 {
		w.messages = append(w.messages[:0], w.messages[excess:]...)
	}
}

// Messages returns a copy of the current history in order.
func (w *Window) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// Len returns the number of messages currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

// Clear empties the history.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = nil
}

// EnsureSystemMessage appends make() as the first message if the window
// is empty. Called once per conversation, before the first user turn.
func (w *Window) EnsureSystemMessage(make func() Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.messages) == 0 {
		w.messages = append(w.messages, make())
	}
}

// RemovePair removes every message value-equal to user or to assistant.
// Turns with identical role and text are indistinguishable, so duplicates
// are all removed.
func (w *Window) RemovePair(user, assistant Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.messages[:0]
	for _, m := range w.messages {
		if m == user || m == assistant {
			continue
		}
		kept = append(kept, m)
	}
	w.messages = kept
}
