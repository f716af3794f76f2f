package kv

import (
	"context"
	"sync"
	"time"

	"github.com/wallboard/wallboard-server/internal/model"
)

var _ model.KeyValue = (*Memory)(nil)

// Memory is the in-process fallback backend. It is selected once at startup
// when the networked backend is unreachable and stays active for the process
// lifetime.
//
// Divergence from the redis backend: TTLs are accepted but NOT enforced.
// Entries persist until explicitly deleted. While degraded, jti records for
// expired refresh tokens and stale cached query results accumulate until
// revocation or invalidation removes them. Do not "fix" this here without
// revisiting every caller that relies on it being documented behavior.
type Memory struct {
	mu   sync.Mutex
	data map[string]any
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]any)}
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *Memory) SetString(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", model.ErrKeyNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", model.ErrKeyNotFound
	}
	return s, nil
}

func (m *Memory) SetFields(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, _ := m.data[key].(map[string]string)
	merged := make(map[string]string, len(existing)+len(fields))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	m.data[key] = merged
	return nil
}

func (m *Memory) GetFields(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.data[key].(map[string]string)
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) AddToSet(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.data[key].(map[string]struct{})
	if !ok {
		set = make(map[string]struct{})
		m.data[key] = set
	}
	if _, present := set[member]; present {
		return false, nil
	}
	set[member] = struct{}{}
	return true, nil
}

func (m *Memory) SetMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.data[key].(map[string]struct{})
	if !ok {
		return nil, nil
	}
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	return members, nil
}

func (m *Memory) RemoveFromSet(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.data[key].(map[string]struct{})
	if !ok {
		return false, nil
	}
	if _, present := set[member]; !present {
		return false, nil
	}
	delete(set, member)
	return true, nil
}

func (m *Memory) DeleteKeys(_ context.Context, keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			count++
		}
	}
	return count, nil
}

func (m *Memory) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counter, _ := m.data[key].(int64)
	counter++
	m.data[key] = counter
	return counter, nil
}
