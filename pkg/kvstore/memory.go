package kvstore

import (
	"github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store. Nothing survives a restart, so it
// is meant for tests and throwaway sessions.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	// No expiration and no janitor: entries live until deleted.
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *MemoryStore) Put(key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
