package repositories

import (
	"context"
	"fmt"
	"time"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/infra/redis"
)

// RedisCacheStore materializa o cache no Redis. A expiração fica a cargo do
// próprio servidor (TTL por chave), então DeleteExpired não tem o que varrer.
type RedisCacheStore struct {
	client *redis.RedisClient
}

func NewRedisCacheStore(client *redis.RedisClient) *RedisCacheStore {
	return &RedisCacheStore{client: client}
}

func (s *RedisCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, found, err := s.client.GetKey(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("RedisCacheStore.Get - lookup failed for key %s: %w", key, err)
	}

	return payload, found, nil
}

func (s *RedisCacheStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.SetKey(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("RedisCacheStore.Set - write failed for key %s: %w", key, err)
	}

	return nil
}

func (s *RedisCacheStore) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	deleted, err := s.client.DeleteByPrefix(ctx, PatternPrefix(pattern))
	if err != nil {
		return deleted, fmt.Errorf("RedisCacheStore.DeleteByPattern - delete failed for pattern %s: %w", pattern, err)
	}

	return deleted, nil
}

func (s *RedisCacheStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// Stats aproxima o resumo pelo DBSIZE: o Redis remove expiradas sozinho,
// então tudo que existe conta como ativo.
func (s *RedisCacheStore) Stats(ctx context.Context) (domain.CacheStats, error) {
	total, err := s.client.CountKeys(ctx)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("RedisCacheStore.Stats - count failed: %w", err)
	}

	return domain.CacheStats{Total: total, Active: total}, nil
}
