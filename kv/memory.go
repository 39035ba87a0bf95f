package kv

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. State is lost on restart; it is the default
// when no redis URL is configured, and the backend tests run against.
type Memory struct {
	mu    sync.RWMutex
	store map[string]entry
}

type entry struct {
	value     string
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{store: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.store[key]
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return "", nil
	}
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.store[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.store, k)
	}
	return nil
}
