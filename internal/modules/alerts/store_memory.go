package alerts

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps markers in process memory, one go-cache per namespace.
// Markers do not survive a restart.
type MemoryStore struct {
	caches map[string]*cache.Cache
}

// NewMemoryStore creates an in-memory store. Expired entries are purged every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	caches := make(map[string]*cache.Cache, len(Kinds))
	for _, k := range Kinds {
		caches[k.namespace()] = cache.New(cache.NoExpiration, cleanupInterval)
	}
	return &MemoryStore{caches: caches}
}

func (s *MemoryStore) cache(namespace string) (*cache.Cache, error) {
	if err := checkNamespace(namespace); err != nil {
		return nil, err
	}
	return s.caches[namespace], nil
}

// Set stores value under key for ttl
func (s *MemoryStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	c, err := s.cache(namespace)
	if err != nil {
		return err
	}
	c.Set(key, value, ttl)
	return nil
}

// SetIfAbsent stores value unless an unexpired entry exists
func (s *MemoryStore) SetIfAbsent(_ context.Context, namespace, key string, value []byte, ttl time.Duration) (bool, error) {
	c, err := s.cache(namespace)
	if err != nil {
		return false, err
	}
	// Add fails when the key is present and unexpired
	if err := c.Add(key, value, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Get returns the stored value
func (s *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	c, err := s.cache(namespace)
	if err != nil {
		return nil, false, err
	}
	v, ok := c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

// Exists reports whether key is present
func (s *MemoryStore) Exists(_ context.Context, namespace, key string) (bool, error) {
	c, err := s.cache(namespace)
	if err != nil {
		return false, err
	}
	_, ok := c.Get(key)
	return ok, nil
}

// Delete removes key
func (s *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	c, err := s.cache(namespace)
	if err != nil {
		return err
	}
	c.Delete(key)
	return nil
}

// Close drops every entry
func (s *MemoryStore) Close() error {
	for _, c := range s.caches {
		c.Flush()
	}
	return nil
}
