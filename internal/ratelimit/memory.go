package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps counts in process. Used when no Redis is configured
// and in tests.
type MemoryLimiter struct {
	mu       sync.Mutex
	policy   Policy
	entries  map[string]memoryEntry
	clockNow func() time.Time
}

type memoryEntry struct {
	failures int
	expires  time.Time
}

func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:   policy,
		entries:  make(map[string]memoryEntry),
		clockNow: time.Now,
	}
}

func (m *MemoryLimiter) Check(_ context.Context, scope, subject string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key("mem", scope, subject))
	if !ok {
		return Status{}, nil
	}
	return m.policy.status(e.failures, e.expires.Sub(m.clockNow())), nil
}

func (m *MemoryLimiter) Fail(_ context.Context, scope, subject string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key("mem", scope, subject)
	e, ok := m.live(k)
	if !ok {
		e = memoryEntry{expires: m.clockNow().Add(m.policy.Window)}
	}
	e.failures++
	m.entries[k] = e
	return m.policy.status(e.failures, e.expires.Sub(m.clockNow())), nil
}

func (m *MemoryLimiter) Reset(_ context.Context, scope, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key("mem", scope, subject))
	return nil
}

// live returns the entry for k unless its window has passed. Caller holds mu.
func (m *MemoryLimiter) live(k string) (memoryEntry, bool) {
	e, ok := m.entries[k]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.clockNow().Before(e.expires) {
		delete(m.entries, k)
		return memoryEntry{}, false
	}
	return e, true
}
