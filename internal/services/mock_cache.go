package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockCache is an in-memory Cache for testing. Without hooks it behaves like
// a real cache without expiry.
type MockCache struct {
	PingFunc func(ctx context.Context) error
	SetFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetFunc  func(ctx context.Context, key string) (string, error)

	// Track calls for testing
	SetCalls []SetCall
	GetCalls []string
	DelCalls [][]string

	data map[string]string
	mu   sync.Mutex
}

type SetCall struct {
	Key        string
	Value      interface{}
	Expiration time.Duration
}

var _ Cache = (*MockCache)(nil)

// NewMockCache creates a new mock cache
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

func (m *MockCache) Ping(ctx context.Context) error {
	m.mu.Lock()
	fn := m.PingFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value, Expiration: expiration})
	fn := m.SetFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, key, value, expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, key)
	fn := m.GetFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DelCalls = append(m.DelCalls, keys)
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MockCache) Close() error {
	return nil
}

// SetPingError sets up the mock to return an error on Ping
func (m *MockCache) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PingFunc = func(ctx context.Context) error {
		return err
	}
}

// SetPingSuccess sets up the mock to return success on Ping
func (m *MockCache) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PingFunc = nil
}

// SetGetError sets up the mock to fail every Get
func (m *MockCache) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetFunc = func(ctx context.Context, key string) (string, error) {
		return "", err
	}
}

// Keys returns the keys currently stored.
func (m *MockCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
