package testing

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockNotifier records delivered messages and can be told to fail.
type MockNotifier struct {
	mu       sync.RWMutex
	messages []string
	err      error
	failNext int
	delay    time.Duration
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{messages: make([]string, 0)}
}

// SetError makes every Notify call fail with err (nil restores success)
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailNext makes the next n Notify calls fail
func (m *MockNotifier) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

// SetDelay makes Notify block for d or until its context ends
func (m *MockNotifier) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Notify records message unless configured to fail
func (m *MockNotifier) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failNext > 0 {
		m.failNext--
		return errors.New("mock delivery failure")
	}
	m.messages = append(m.messages, message)
	return nil
}

// Messages returns a copy of the delivered messages
func (m *MockNotifier) Messages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// ErrStoreUnavailable is returned by MockStore when failing.
var ErrStoreUnavailable = errors.New("mock store unavailable")

// MockStore is an in-memory dedup store without expiry that can be told to fail.
type MockStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	failing bool
	calls   int
}

// NewMockStore creates a new mock store
func NewMockStore() *MockStore {
	return &MockStore{entries: make(map[string][]byte)}
}

// SetFailing makes every call return ErrStoreUnavailable
func (m *MockStore) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// Calls returns the number of store calls made
func (m *MockStore) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockStore) enter() error {
	m.calls++
	if m.failing {
		return ErrStoreUnavailable
	}
	return nil
}

// Set stores value
func (m *MockStore) Set(_ context.Context, namespace, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.entries[namespace+"/"+key] = value
	return nil
}

// SetIfAbsent stores value only when no entry exists
func (m *MockStore) SetIfAbsent(_ context.Context, namespace, key string, value []byte, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	if _, ok := m.entries[namespace+"/"+key]; ok {
		return false, nil
	}
	m.entries[namespace+"/"+key] = value
	return true, nil
}

// Get returns the stored value
func (m *MockStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, false, err
	}
	v, ok := m.entries[namespace+"/"+key]
	return v, ok, nil
}

// Exists reports whether an entry exists
func (m *MockStore) Exists(_ context.Context, namespace, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	_, ok := m.entries[namespace+"/"+key]
	return ok, nil
}

// Delete removes an entry
func (m *MockStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	delete(m.entries, namespace+"/"+key)
	return nil
}

// Close is a no-op
func (m *MockStore) Close() error {
	return nil
}
