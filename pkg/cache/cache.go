// Package cache keeps the last known-good result of each endpoint
// call for the life of the process. When a later run of the same call
// comes back empty, the cached result stands in, so a flaky session
// never erases data that was already in hand.
package cache

import (
	"reflect"
	"sync"
)

// Store is a process-lifetime result cache. Keys follow the
// "<endpoint>:<identifier>" convention from Key.
type Store struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]interface{})}
}

// Key builds the canonical cache key for an endpoint call.
func Key(endpoint, identifier string) string {
	if identifier == "" {
		return endpoint
	}
	return endpoint + ":" + identifier
}

// Put stores a result, overwriting any prior entry. Empty results are
// dropped so they can never shadow a good one.
func (s *Store) Put(key string, value interface{}) {
	if isEmpty(value) {
		return
	}
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
}

// Get returns the stored result for key.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		hitsTotal.Inc()
	} else {
		missesTotal.Inc()
	}
	return v, ok
}

// GetOr returns the stored result for key, or fallback when absent.
func (s *Store) GetOr(key string, fallback interface{}) interface{} {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// Len reports how many results are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// isEmpty reports whether a result carries no data: nil, a zero-length
// slice, or a zero-length map.
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
