package kvstore

import (
	"context"
	"errors"
	"sync"
)

// Device keys shared by the terminal client.
const (
	KeyUser    = "roam_user"
	KeyQuota   = "roam_quota"
	KeyMatches = "roam_matches"
)

var ErrEmptyKey = errors.New("kv key is required")

// UpdateFunc receives the current value (ok=false when absent) and returns the
// value to store.
type UpdateFunc func(current string, ok bool) (string, error)

// Store is a best-effort string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Update performs a read-modify-write of one key as a single step.
	Update(ctx context.Context, key string, fn UpdateFunc) (string, error)
}

type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fn UpdateFunc) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.data[key]
	next, err := fn(current, ok)
	if err != nil {
		return "", err
	}
	m.data[key] = next
	return next, nil
}
