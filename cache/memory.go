package cache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jtouzy/spyder/wire"
)

const numShards = 16

type shard struct {
	mu    sync.Mutex
	items map[string]Entry
}

// Manager is the in-memory response store. It is unbounded and only expires
// entries lazily, when a lookup finds them stale.
type Manager struct {
	policy      Policy
	fingerprint Fingerprint
	shards      [numShards]*shard
}

type Option func(*Manager)

func WithFingerprint(f Fingerprint) Option {
	return func(m *Manager) {
		if f != nil {
			m.fingerprint = f
		}
	}
}

func NewManager(policy Policy, opts ...Option) *Manager {
	m := &Manager{
		policy:      policy,
		fingerprint: FullRequest,
	}
	for i := range m.shards {
		m.shards[i] = &shard{items: make(map[string]Entry)}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Policy() Policy {
	return m.policy
}

func (m *Manager) Key(req wire.Request) string {
	return m.fingerprint(req)
}

func (m *Manager) shardFor(key string) *shard {
	return m.shards[xxhash.Sum64String(key)%numShards]
}

// RegisterEntryIfNeeded stores body for req until storedAt plus the policy
// duration, replacing any previous entry. It does nothing under None.
func (m *Manager) RegisterEntryIfNeeded(body []byte, req wire.Request, storedAt time.Time) {
	d, ok := m.policy.Duration()
	if !ok {
		return
	}

	key := m.Key(req)
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = Entry{
		Body:      append([]byte{}, body...),
		ExpiresAt: storedAt.Add(d),
	}
}

func (m *Manager) Register(body []byte, req wire.Request) {
	m.RegisterEntryIfNeeded(body, req, time.Now())
}

// FindNonExpiredEntry returns the body stored for req if it expires strictly
// after comparedAt. A stale entry is removed before returning.
func (m *Manager) FindNonExpiredEntry(req wire.Request, comparedAt time.Time) ([]byte, bool) {
	if _, ok := m.policy.Duration(); !ok {
		return nil, false
	}

	key := m.Key(req)
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if !e.ExpiresAt.After(comparedAt) {
		delete(s.items, key)
		return nil, false
	}
	return append([]byte{}, e.Body...), true
}

func (m *Manager) Find(req wire.Request) ([]byte, bool) {
	return m.FindNonExpiredEntry(req, time.Now())
}

// Len counts stored entries, stale ones included.
func (m *Manager) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}

func (m *Manager) Purge() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = make(map[string]Entry)
		s.mu.Unlock()
	}
}
