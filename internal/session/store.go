package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a session transcript. Messages are immutable
// once appended; the transcript is ordered chronologically.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ErrNotFound indicates the session id has no stored history.
var ErrNotFound = errors.New("session: not found")

// Store is the session history capability: ordered reads, appends, and
// explicit deletion, keyed by an opaque session id.
type Store interface {
	Get(ctx context.Context, sessionID string) ([]Message, error)
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	Delete(ctx context.Context, sessionID string) error
}

// Locker serializes access per session id so concurrent requests for the
// same session cannot interleave reads and appends.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker creates an empty per-key lock map.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a session id, creating it on first use.
func (l *Locker) Lock(sessionID string) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the lock for a session id.
func (l *Locker) Unlock(sessionID string) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	l.mu.Unlock()
	if ok {
		m.Unlock()
	}
}

// Forget drops the lock entry for a deleted session.
func (l *Locker) Forget(sessionID string) {
	l.mu.Lock()
	delete(l.locks, sessionID)
	l.mu.Unlock()
}

// MemoryStore keeps session history in process memory for the process
// lifetime. Individual operations are atomic; callers that need a whole
// read-modify-write serialized per session hold a Locker around it.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Message)}
}

// Get returns a copy of the session transcript in insertion order.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

// Append adds messages to the end of the session transcript, creating the
// session on first use.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msgs...)
	s.mu.Unlock()
	return nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Len reports how many sessions are currently held. Used by the health
// endpoint.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
