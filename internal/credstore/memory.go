// ABOUTME: In-memory credential store
// ABOUTME: Used by tests and by sessions that must not touch disk

package credstore

import "sync"

// Memory is a process-local Store.
type Memory struct {
	mu        sync.RWMutex
	namespace string
	values    map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory(namespace string) *Memory {
	return &Memory{
		namespace: namespace,
		values:    make(map[string]string),
	}
}

func (m *Memory) Get(kind Kind) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[kind.Key(m.namespace)]
	return v, ok
}

func (m *Memory) Set(kind Kind, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[kind.Key(m.namespace)] = token
}

func (m *Memory) Clear(kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, kind.Key(m.namespace))
}
