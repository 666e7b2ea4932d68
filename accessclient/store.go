package accessclient

import "sync"

// Store is the read-only settings source the client consults.
// The verifier never writes through it.
type Store interface {
	// Get returns the value under key and whether it was present.
	Get(key string) (string, bool)
}

// MapStore is an in-memory Store, safe for concurrent reads and writes.
// It stands in for the session storage a host application would supply.
type MapStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapStore builds a MapStore seeded with values.
func NewMapStore(values map[string]string) *MapStore {
	seeded := make(map[string]string, len(values))
	for k, v := range values {
		seeded[k] = v
	}
	return &MapStore{values: seeded}
}

func (s *MapStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *MapStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key.
func (s *MapStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
