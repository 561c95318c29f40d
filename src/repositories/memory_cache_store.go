package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"ouvidoria-analytics/src/domain"
)

// MemoryCacheStore guarda o cache em memória do processo. Serve para
// desenvolvimento local e testes; a semântica (expiração preguiçosa no Get,
// upsert last-writer-wins, prefixo ancorado) é idêntica à dos stores
// persistentes.
type MemoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !entry.expiresAt.After(time.Now()) {
		return nil, false, nil
	}

	payload := make([]byte, len(entry.payload))
	copy(payload, entry.payload)

	return payload, true, nil
}

func (s *MemoryCacheStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	s.mu.Lock()
	s.entries[key] = memoryEntry{
		payload:   stored,
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()

	return nil
}

func (s *MemoryCacheStore) DeleteByPattern(_ context.Context, pattern string) (int64, error) {
	prefix := PatternPrefix(pattern)

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			deleted++
		}
	}

	return deleted, nil
}

// Stats conta as entradas ativas e as expiradas ainda não varridas.
func (s *MemoryCacheStore) Stats(_ context.Context) (domain.CacheStats, error) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CacheStats{Total: int64(len(s.entries))}
	for _, entry := range s.entries {
		if entry.expiresAt.After(now) {
			stats.Active++
		} else {
			stats.Expired++
		}
	}

	return stats, nil
}

func (s *MemoryCacheStore) DeleteExpired(_ context.Context) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
			deleted++
		}
	}

	return deleted, nil
}
