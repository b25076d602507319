package cookies

import (
	"fmt"
	"sync"
)

// MemoryStore implements Store in memory, primarily for tests
type MemoryStore struct {
	jars map[string]*Jar
	mu   sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMemoryStore creates a new in-memory jar store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jars: make(map[string]*Jar),
	}
}

// Store saves a jar to the memory store
func (m *MemoryStore) Store(jar *Jar) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if jar == nil || jar.Name == "" {
		return ErrInvalidJar
	}

	// Create a copy to avoid external modifications
	jarCopy := *jar
	jarCopy.Cookies = append([]Cookie(nil), jar.Cookies...)
	m.jars[jar.Name] = &jarCopy

	return nil
}

// Retrieve gets a jar from the memory store
func (m *MemoryStore) Retrieve(name string) (*Jar, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		return nil, ErrInvalidJar
	}

	jar, exists := m.jars[name]
	if !exists {
		return nil, ErrJarNotFound
	}

	// Return a copy to avoid external modifications
	jarCopy := *jar
	jarCopy.Cookies = append([]Cookie(nil), jar.Cookies...)
	return &jarCopy, nil
}

// List returns all stored jars from the memory store
func (m *MemoryStore) List() ([]*Jar, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var jars []*Jar
	for _, jar := range m.jars {
		jarCopy := *jar
		jarCopy.Cookies = append([]Cookie(nil), jar.Cookies...)
		jars = append(jars, &jarCopy)
	}

	return jars, nil
}

// Delete removes a jar from the memory store
func (m *MemoryStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return ErrInvalidJar
	}

	if _, exists := m.jars[name]; !exists {
		return ErrJarNotFound
	}

	delete(m.jars, name)
	return nil
}

// Exists checks if a jar exists in the memory store
func (m *MemoryStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.jars[name]
	return exists
}

// Clear removes all jars from the memory store (useful for test cleanup)
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jars = make(map[string]*Jar)
}

// Count returns the number of jars in the memory store
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.jars)
}

// GetJar returns a copy of the jar for inspection (useful for testing)
func (m *MemoryStore) GetJar(name string) (*Jar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jar, exists := m.jars[name]
	if !exists {
		return nil, fmt.Errorf("jar not found: %s", name)
	}

	jarCopy := *jar
	return &jarCopy, nil
}

// NewMemoryManager creates a Manager with a memory store for testing
func NewMemoryManager() (*Manager, *MemoryStore) {
	memStore := NewMemoryStore()
	manager := &Manager{
		stores: []Store{memStore},
	}
	return manager, memStore
}

// NewManagerWithStores creates a Manager with explicit stores
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{
		stores: stores,
	}
}
