package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record
	expires time.Time
}

// MemoryStore serves a single process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Begin(_ context.Context, key, requestHash string, ttl time.Duration) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if entry, ok := m.entries[key]; ok && now.Before(entry.expires) {
		return resolve(entry.record, requestHash)
	}
	m.sweepLocked(now)
	m.entries[key] = memoryEntry{record: record{Hash: requestHash}, expires: now.Add(ttl)}
	return nil, nil
}

func (m *MemoryStore) Complete(_ context.Context, key, requestHash string, resp Response, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		record:  record{Hash: requestHash, Done: true, Response: &resp},
		expires: m.now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for key, entry := range m.entries {
		if !now.Before(entry.expires) {
			delete(m.entries, key)
		}
	}
}
