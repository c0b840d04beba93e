package store

import (
	"context"
	"errors"
	"fmt"

	"tradefeed/crawler/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each artifact under <prefix><key>.
type RedisStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStore(redisClient *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	err := s.redisClient.Set(ctx, s.keyPrefix+key, data, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s not found in redis", domain.ErrMissingPrerequisite, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Close() error {
	return s.redisClient.Close()
}

var _ Store = (*RedisStore)(nil)
