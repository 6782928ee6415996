package store

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory implements Store on a mutex-guarded map with lazy expiry. It is the
// substrate used in tests; the mutex makes it the single shared store, not a
// process-local cache of one.
type Memory struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock builds a Memory store on an injected clock so tests can
// advance time deterministically.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		data: make(map[string]memoryEntry),
		now:  now,
	}
}

// get returns the live entry for key, deleting it if it has expired.
// Callers must hold m.mu.
func (m *Memory) get(key string) (memoryEntry, bool) {
	entry, ok := m.data[key]
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(m.now()) {
		delete(m.data, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *Memory) set(key string, value []byte, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = entry
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return entry.value, nil
}

func (m *Memory) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.set(key, value, ttl)
	return nil
}

func (m *Memory) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.get(key); ok {
		return false, nil
	}
	m.set(key, value, ttl)
	return true, nil
}

func (m *Memory) CompareAndSwap(_ context.Context, key string, old, new []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.get(key)
	if !ok || !bytes.Equal(entry.value, old) {
		return false, nil
	}
	entry.value = new
	m.data[key] = entry
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.get(key)
	if !ok {
		m.set(key, []byte("1"), ttl)
		return 1, nil
	}
	count, err := strconv.ParseInt(string(entry.value), 10, 64)
	if err != nil {
		return 0, err
	}
	count++
	entry.value = []byte(strconv.FormatInt(count, 10))
	m.data[key] = entry
	return count, nil
}

func (m *Memory) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.get(key)
	if !ok || entry.expiresAt.IsZero() {
		return 0, nil
	}
	return entry.expiresAt.Sub(m.now()), nil
}

func (m *Memory) Close() error {
	return nil
}
