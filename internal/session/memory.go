package session

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
)

// MemoryStore keeps sessions in process memory. Restarting the process
// drops every session.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		opts:     opts.withDefaults(),
	}
}

func (m *MemoryStore) GetOrCreate(_ context.Context, id, callerPhone string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = &Session{
			ID:          id,
			CallerPhone: callerPhone,
			Known:       extract.Context{Intent: extract.IntentGeneral},
			CreatedAt:   m.opts.Now(),
		}
		m.sessions[id] = s
	}
	return clone(s), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) AppendTurns(_ context.Context, id string, turns ...Turn) error {
	stamped := stampTurns(turns, m.opts.Now())
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Turns = trimTurns(append(s.Turns, stamped...), m.opts.MaxTurns)
	return nil
}

func (m *MemoryStore) UpdateKnown(_ context.Context, id string, known extract.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Known = known
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) EvictStale(_ context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-m.opts.MaxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

func (m *MemoryStore) Len(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}

func clone(s *Session) *Session {
	out := *s
	out.Turns = append([]Turn(nil), s.Turns...)
	return &out
}
