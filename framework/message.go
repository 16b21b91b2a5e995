package framework

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageKind categorizes inter-handler messages.
type MessageKind string

const (
	KindTask   MessageKind = "task"
	KindResult MessageKind = "result"
	KindQuery  MessageKind = "query"
)

// Message is one entry in the swarm's communication log. Messages are
// immutable once appended; the log hands out copies, never pointers into its
// backing slice.
type Message struct {
	ID        string      `json:"id"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageLog keeps a chronological record of everything the handlers say to
// each other. It grows for the lifetime of the process unless Clear is
// called between unrelated runs.
type MessageLog struct {
	mu       sync.RWMutex
	messages []Message
}

// NewMessageLog builds an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Record appends a message stamped with the current time. From/To are not
// validated against any registry; any name is accepted.
func (l *MessageLog) Record(from, to string, kind MessageKind, content string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

// ContextFor returns, in insertion order, every message addressed to or sent
// by the named handler. The result is a filtered copy; calling it repeatedly
// has no effect on the log.
func (l *MessageLog) ContextFor(name string) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var relevant []Message
	for _, msg := range l.messages {
		if msg.To == name || msg.From == name {
			relevant = append(relevant, msg)
		}
	}
	return relevant
}

// All returns a snapshot of the full log in insertion order.
func (l *MessageLog) All() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot := make([]Message, len(l.messages))
	copy(snapshot, l.messages)
	return snapshot
}

// Len reports the number of recorded messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Clear empties the log. Irreversible; intended between independent runs
// that should not see each other's context.
func (l *MessageLog) Clear() {
	l.mu.Lock()
	l.messages = nil
	l.mu.Unlock()
}
