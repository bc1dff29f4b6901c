package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// Store is a shared tier for raw schema exports, so a fleet of schema
// services fetches each version from the source only once per TTL.
type Store interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, version ocsf.Version) ([]byte, error)
	Set(ctx context.Context, version ocsf.Version, data []byte) error
	Delete(ctx context.Context, versions ...ocsf.Version) error
}

const keyPrefix = "ocsf:schema:"

// RedisStore keeps raw exports in Redis under "ocsf:schema:<version>".
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl keeps entries forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

func key(version ocsf.Version) string {
	return keyPrefix + version.String()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, version ocsf.Version) ([]byte, error) {
	data, err := s.redis.Get(ctx, key(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schema %s: %w", version, err)
	}
	return data, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, version ocsf.Version, data []byte) error {
	if err := s.redis.Set(ctx, key(version), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set schema %s: %w", version, err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, versions ...ocsf.Version) error {
	if len(versions) == 0 {
		return nil
	}
	keys := make([]string, len(versions))
	for i, v := range versions {
		keys[i] = key(v)
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete schemas: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
