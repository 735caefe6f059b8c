package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process KV backend. It is the default backend and the
// test double for the quota governor: it enforces a per-item size limit and
// accounts bytes the same way a browser extension store does
// (len(key) + len(value) per entry).
type MemoryStore struct {
	mu           sync.RWMutex
	items        map[string][]byte
	maxItemBytes int64
}

// DefaultMaxItemBytes mirrors the 8 KiB per-item limit of the original
// persistence substrate.
const DefaultMaxItemBytes = 8192

// NewMemoryStore creates a memory-backed store. maxItemBytes <= 0 disables
// the per-item limit.
func NewMemoryStore(maxItemBytes int64) *MemoryStore {
	return &MemoryStore{
		items:        make(map[string][]byte),
		maxItemBytes: maxItemBytes,
	}
}

func (m *MemoryStore) Get(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := m.items[k]; ok {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[k] = cp
		}
	}
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, items map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxItemBytes > 0 {
		for k, v := range items {
			if int64(len(k)+len(v)) > m.maxItemBytes {
				return ErrItemTooLarge
			}
		}
	}

	for k, v := range items {
		cp := make([]byte, len(v))
		copy(cp, v)
		m.items[k] = cp
	}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryStore) BytesInUse(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if key != "" {
		v, ok := m.items[key]
		if !ok {
			return 0, nil
		}
		return int64(len(key) + len(v)), nil
	}

	var total int64
	for k, v := range m.items {
		total += int64(len(k) + len(v))
	}
	return total, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
