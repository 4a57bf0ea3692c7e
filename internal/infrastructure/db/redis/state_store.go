package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "storefront"

// StateStore keeps the device's durable local state in Redis.
// Key format: <prefix>:state:<key>
type StateStore struct {
	client *redis.Client
	prefix string
}

// NewStateStore creates a StateStore wrapping the given Redis client.
func NewStateStore(client *redis.Client, prefix string) *StateStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &StateStore{client: client, prefix: prefix}
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state get %s: %w", key, err)
	}
	return v, true, nil
}

// Put overwrites the whole record. Records never expire.
func (s *StateStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("state put %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("state delete %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *StateStore) key(k string) string {
	return fmt.Sprintf("%s:state:%s", s.prefix, k)
}
