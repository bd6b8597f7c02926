package datasource

import (
	"context"
	"fmt"
	"time"
)

// Cache stores raw provider payloads by request key
type Cache interface {
	// Get returns ErrCacheMiss for absent or expired keys
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NopCache) Close() error {
	return nil
}

// OpenCache opens the cache backend named by kind: none, sqlite or redis
func OpenCache(kind, sqlitePath, redisURL string) (Cache, error) {
	switch kind {
	case "", "none":
		return NopCache{}, nil
	case "sqlite":
		c, err := NewSQLiteCache(sqlitePath)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis":
		c, err := NewRedisCache(redisURL, "betscout:")
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache %q", kind)
	}
}
