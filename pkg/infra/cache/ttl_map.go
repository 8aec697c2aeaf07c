// Package cache provides a small in-process TTL map. The citation matcher
// uses it to avoid re-querying the retrieval index for a citation it has
// already resolved recently.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLMap is a thread-safe map whose entries expire after a fixed TTL.
type TTLMap[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
	ttl  time.Duration
}

// NewTTLMap creates a TTLMap with the given per-entry TTL.
func NewTTLMap[V any](ttl time.Duration) *TTLMap[V] {
	return &TTLMap[V]{
		data: make(map[string]entry[V]),
		ttl:  ttl,
	}
}

// Get returns the value for key if present and not expired. Expired entries
// are removed lazily.
func (m *TTLMap[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.data[key]; ok && time.Now().After(cur.expiresAt) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set adds or refreshes a value.
func (m *TTLMap[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry[V]{value: value, expiresAt: time.Now().Add(m.ttl)}
}

// Len reports the number of stored entries, including not-yet-reaped
// expired ones.
func (m *TTLMap[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all entries.
func (m *TTLMap[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry[V])
}
