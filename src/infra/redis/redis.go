package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr string, poolSize int) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr: addr,

		// Pool settings para alta concorrência
		PoolSize:     poolSize,
		MinIdleConns: 10,

		// Timeouts otimizados para cache
		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		// Retry
		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisClient{client: client}
}

// SetKey grava o valor com o TTL próprio da entrada (cada endpoint tem a sua
// janela de frescor; não existe TTL default do cliente).
func (rc *RedisClient) SetKey(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

func (rc *RedisClient) GetKey(ctx context.Context, key string) ([]byte, bool, error) {
	result := rc.client.Get(ctx, key)

	// Cache miss
	if result.Err() == redis.Nil {
		return nil, false, nil
	}
	if result.Err() != nil {
		return nil, false, result.Err()
	}

	value, err := result.Bytes()
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

// DeleteByPrefix remove todas as chaves que começam com o prefixo literal.
// Usa SCAN incremental para não bloquear o servidor com KEYS.
func (rc *RedisClient) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	var errors []string

	iter := rc.client.Scan(ctx, 0, escapeMatchPattern(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			errors = append(errors, fmt.Sprintf("key %s: %v", iter.Val(), err))
			continue
		}
		deleted++
	}

	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan failed for prefix %s: %w", prefix, err)
	}

	if len(errors) > 0 {
		return deleted, fmt.Errorf("deletion errors: %s", strings.Join(errors, "; "))
	}

	return deleted, nil
}

// CountKeys devolve o total de chaves do banco corrente. O cache usa um
// banco lógico dedicado, então DBSIZE conta só as entradas de cache.
func (rc *RedisClient) CountKeys(ctx context.Context) (int64, error) {
	return rc.client.DBSize(ctx).Result()
}

// Health check
func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// escapeMatchPattern escapa metacaracteres de glob do SCAN MATCH para que o
// prefixo seja tratado como literal.
func escapeMatchPattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return replacer.Replace(s)
}
