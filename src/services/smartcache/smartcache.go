package smartcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/repositories"

	"golang.org/x/sync/singleflight"
)

// ComputeFunc produz o resultado moldado de um endpoint quando não há cache.
type ComputeFunc func(ctx context.Context) (interface{}, error)

// SmartCache é o orquestrador compute-or-serve: deriva a chave a partir de
// (endpoint, filtros), serve do CacheStore quando há entrada fresca e, no
// miss, executa o cálculo uma única vez por chave (singleflight) antes de
// persistir com o TTL do endpoint.
//
// Falha ao persistir nunca falha a requisição: cache é otimização, não
// dependência de correção. Erro do cálculo propaga sem ser cacheado.
type SmartCache struct {
	logger        *slog.Logger
	store         repositories.CacheStore
	policy        domain.Policy
	schemaVersion string
	group         singleflight.Group
}

func NewSmartCache(logger *slog.Logger, store repositories.CacheStore, policy domain.Policy) *SmartCache {
	return &SmartCache{
		logger:        logger,
		store:         store,
		policy:        policy,
		schemaVersion: DefaultSchemaVersion,
	}
}

// GetOrCompute devolve o payload do endpoint para o conjunto de filtros,
// do cache ou recém-calculado. O payload retornado é o JSON serializado do
// resultado; duas chamadas consecutivas sem invalidação no meio devolvem
// bytes idênticos.
func (sc *SmartCache) GetOrCompute(ctx context.Context, endpoint, qualifier string, filters *domain.FilterSet, compute ComputeFunc) (json.RawMessage, error) {
	key := MakeKey(endpoint, qualifier, filters, sc.schemaVersion)

	payload, found, err := sc.store.Get(ctx, key)
	if err != nil {
		// Erro de cache não derruba a requisição; segue para o cálculo
		sc.logger.Warn("Cache lookup failed", "error", err, "key", key)
	}
	if found && err == nil {
		sc.logger.Debug("Cache hit", "key", key)
		return payload, nil
	}

	sc.logger.Debug("Cache miss", "key", key)

	result, err, _ := sc.group.Do(key, func() (interface{}, error) {
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(computed)
		if err != nil {
			return nil, fmt.Errorf("SmartCache.GetOrCompute - failed to marshal payload for key %s: %w", key, err)
		}

		if err := sc.store.Set(ctx, key, encoded, sc.policy.TTLFor(endpoint)); err != nil {
			sc.logger.Warn("Failed to persist cache entry (non-fatal)", "error", err, "key", key)
		}

		return json.RawMessage(encoded), nil
	})
	if err != nil {
		return nil, err
	}

	return result.(json.RawMessage), nil
}
