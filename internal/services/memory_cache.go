package services

import (
	"sync"
	"time"
)

type memoryCacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCacheBackend is an in-process CacheBackend. It backs tests and
// development runs that have no Redis server configured.
type MemoryCacheBackend struct {
	entries sync.Map // map[string]memoryCacheEntry
}

// NewMemoryCacheBackend creates an empty in-process cache backend.
func NewMemoryCacheBackend() *MemoryCacheBackend {
	return &MemoryCacheBackend{}
}

func (m *MemoryCacheBackend) GetBytes(key string) ([]byte, error) {
	value, ok := m.entries.Load(key)
	if !ok {
		return nil, nil
	}
	entry := value.(memoryCacheEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.entries.Delete(key)
		return nil, nil
	}
	return entry.data, nil
}

func (m *MemoryCacheBackend) SetBytes(key string, value []byte, expiration time.Duration) error {
	entry := memoryCacheEntry{data: value}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}
	m.entries.Store(key, entry)
	return nil
}

func (m *MemoryCacheBackend) Delete(keys ...string) error {
	for _, key := range keys {
		m.entries.Delete(key)
	}
	return nil
}
