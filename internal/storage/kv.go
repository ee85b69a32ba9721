package storage

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by KV.Get when the key has never been set.
	ErrNotFound = errors.New("storage: key not found")
	// ErrCorrupt is returned when a stored value could not be read back and
	// no usable backup existed.
	ErrCorrupt = errors.New("storage: value is corrupt")
)

// KV is the persistence capability the store is built on. Values are JSON
// documents addressed by a short key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Keys used by Storage.
const (
	KeyData    = "data"
	KeySession = "session"
	KeyTheme   = "theme"
)

// MemoryKV keeps values in a map. It is used by tests and by --dry-run style
// callers that must not touch disk.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
