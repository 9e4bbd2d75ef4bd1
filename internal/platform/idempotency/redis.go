package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares keys across instances. Reservation relies on SETNX so
// two instances cannot both run the first request.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "employeedir:idempotency:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Begin(ctx context.Context, key, requestHash string, ttl time.Duration) (*Response, error) {
	pending, err := json.Marshal(record{Hash: requestHash})
	if err != nil {
		return nil, err
	}
	reserved, err := s.client.SetNX(ctx, s.prefix+key, pending, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if reserved {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; treat as still running
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	var existing record
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	return resolve(existing, requestHash)
}

func (s *RedisStore) Complete(ctx context.Context, key, requestHash string, resp Response, ttl time.Duration) error {
	payload, err := json.Marshal(record{Hash: requestHash, Done: true, Response: &resp})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
