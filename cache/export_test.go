package cache

import "github.com/jtouzy/spyder/wire"

// entry reads the stored entry for req without expiring it.
func (m *Manager) entry(req wire.Request) (Entry, bool) {
	key := m.Key(req)
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	return e, ok
}
