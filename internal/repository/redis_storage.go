package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "planner:"

// RedisStorage keeps local storage items as plain redis strings without expiry.
type RedisStorage struct {
	client *redis.Client
}

var _ LocalStorage = (*RedisStorage)(nil)

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, redisKey(key), value, 0).Err()
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKey(key)).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}
