package session

import (
	"context"
	"fmt"
	"time"

	"vetclinic/utils"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps slots under vetclinic:session:<namespace>:<slot>. Every write refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: utils.SessionKeyPrefix + namespace + ":",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(slot string) string {
	return s.prefix + slot
}

func (s *RedisStore) Get(ctx context.Context, slot string) (string, bool, error) {
	data, err := s.client.Get(ctx, s.key(slot)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session slot %s: %w", slot, err)
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, slot, value string) error {
	if err := s.client.Set(ctx, s.key(slot), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session slot %s: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, s.key(slot)).Err(); err != nil {
		return fmt.Errorf("failed to clear session slot %s: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan session slots: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
