package editor

import (
	"context"
	"sync"
	"time"

	"grouporder/apperr"
	"grouporder/models"
)

type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
	locks    map[string]struct{}
	now      func() time.Time
	swept    time.Time
}

// NewMemoryStore drops sessions idle for longer than ttl. Zero keeps them forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]Session),
		locks:    make(map[string]struct{}),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.sessions[s.ID] = copySession(s)
	return nil
}

// sweep drops expired sessions, at most once per ttl. Callers hold mu.
func (m *MemoryStore) sweep() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.swept) < m.ttl {
		return
	}
	m.swept = now
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStore) expired(s Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.UpdatedAt) > m.ttl
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session", id)
	}
	if m.expired(s, m.now()) {
		delete(m.sessions, id)
		return nil, apperr.NotFound("session", id)
	}
	cp := copySession(&s)
	return &cp, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Acquire(ctx context.Context, id string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return nil, apperr.ErrBusy
	}
	m.locks[id] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}

// copySession is shallow apart from OrderedItems; Sequence never mutates its
// backing slice so sharing it is safe.
func copySession(s *Session) Session {
	cp := *s
	cp.OrderedItems = append([]models.OrderedItem(nil), s.OrderedItems...)
	return cp
}
