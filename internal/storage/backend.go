// ABOUTME: Durable key-value backend contract used by the profile and plan store
// ABOUTME: Includes an in-memory backend for tests and throwaway sessions
package storage

import (
	"sort"
	"sync"
)

// Record keys for the two persisted entities
const (
	ProfileKey = "olympus_profile"
	PlanKey    = "olympus_plan"
)

// Backend is a minimal durable key-value store. Get returns (nil, nil) or an error
// for a missing key; the store treats both as "not stored yet".
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Lister is implemented by backends that can enumerate their keys
type Lister interface {
	Keys() ([]string, error)
}

// Keys lists the records held by backend. ok is false when the backend cannot enumerate.
func Keys(backend Backend) (keys []string, ok bool, err error) {
	lister, ok := backend.(Lister)
	if !ok {
		return nil, false, nil
	}
	keys, err = lister.Keys()
	return keys, true, err
}

// MemoryBackend keeps records in a map
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value, or nil if absent
func (m *MemoryBackend) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value
func (m *MemoryBackend) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Keys returns every stored key in sorted order
func (m *MemoryBackend) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}
