package kv

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. It is the default backend and the test double
// used across the repo.
type Memory struct {
	mu      sync.RWMutex
	data    map[string]string
	expires map[string]time.Time
	closed  bool
	now     func() time.Time
}

var (
	_ ExpiringStore = (*Memory)(nil)
	_ Sweeper       = (*Memory)(nil)
)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string]string),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrUnavailable
	}
	if m.expiredLocked(key) {
		m.deleteLocked(key)
		return "", false, nil
	}
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	m.data[key] = value
	delete(m.expires, key)
	return nil
}

// SetWithTTL stores value until ttl elapses. A non-positive ttl never expires.
func (m *Memory) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	m.setLocked(key, value, ttl)
	return nil
}

func (m *Memory) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrUnavailable
	}
	if _, ok := m.data[key]; ok && !m.expiredLocked(key) {
		return false, nil
	}
	m.setLocked(key, value, ttl)
	return true, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	m.deleteLocked(key)
	return nil
}

func (m *Memory) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrUnavailable
	}
	var dropped int64
	for key := range m.expires {
		if m.expiredLocked(key) {
			m.deleteLocked(key)
			dropped++
		}
	}
	return dropped, nil
}

// Keys lists live keys in lexical order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if m.expiredLocked(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len counts stored keys, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrUnavailable
	}
	return nil
}

// Close marks the store unavailable; later calls fail with ErrUnavailable.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) setLocked(key, value string, ttl time.Duration) {
	m.data[key] = value
	if ttl > 0 {
		m.expires[key] = m.now().Add(ttl)
	} else {
		delete(m.expires, key)
	}
}

func (m *Memory) expiredLocked(key string) bool {
	at, ok := m.expires[key]
	return ok && !m.now().Before(at)
}

func (m *Memory) deleteLocked(key string) {
	delete(m.data, key)
	delete(m.expires, key)
}
