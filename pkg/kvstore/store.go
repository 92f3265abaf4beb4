package kvstore

import (
	"errors"
	"fmt"
)

// Store is a small durable key-value store for client-side state
// (session token, theme preference).
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Delete(key string) error
	Close() error
}

const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown state backend")

// Options selects and configures a backend for Open.
type Options struct {
	Backend   string
	Path      string // bolt
	RedisURL  string // redis
	Namespace string // redis key prefix
}

// Open builds the Store named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendBolt, "":
		s, err := NewBoltStore(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := NewRedisStore(opts.RedisURL, opts.Namespace)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
