package history

import "sync"

// Message is a single exchanged chat line. Sender is a free-form label
// (a display name or "AI"); insertion order is conversational order.
type Message struct {
	Sender  string
	Content string
}

// Manager keeps a bounded log of recent messages per user. Once a log
// grows past the limit the oldest entries are evicted first. Logs are
// created lazily on first append and removed entirely on Clear.
type Manager struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string][]Message
}

func NewManager(limit int) *Manager {
	return &Manager{limit: limit, sessions: make(map[string][]Message)}
}

// SetLimit applies a new capacity to future appends. Existing logs are
// trimmed on their next append, not eagerly.
func (m *Manager) SetLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
}

// Append adds a message to the user's log, evicting from the front once
// the log exceeds the capacity. Appends for an empty user ID are dropped.
func (m *Manager) Append(userID, sender, content string) {
	if userID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append(m.sessions[userID], Message{Sender: sender, Content: content})
	for m.limit > 0 && len(msgs) > m.limit {
		msgs = msgs[1:]
	}
	m.sessions[userID] = msgs
}

// Snapshot returns a point-in-time copy of the user's log in insertion
// order. The returned slice is owned by the caller.
func (m *Manager) Snapshot(userID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[userID]
	if len(msgs) == 0 {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Clear removes all history for the user. Clearing an unknown user is a
// no-op.
func (m *Manager) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
