package repositories

import (
	"context"
	"strings"
	"time"

	"ouvidoria-analytics/src/domain"
)

// CacheStore é o mapa persistente chave -> (payload, expiresAt) usado como
// cache materializado das agregações. Implementações precisam ser seguras
// para uso concorrente por múltiplas requisições e pelo watcher.
//
// Semântica comum a todas as implementações:
//   - Get trata expiresAt <= now como ausente (expiração preguiçosa), mesmo
//     que a entrada ainda exista fisicamente;
//   - Set é upsert last-writer-wins e rearma o vencimento;
//   - DeleteByPattern recebe um padrão "prefixo*" (um único curinga, sempre
//     no final) e remove toda chave que começa com o prefixo literal;
//   - DeleteExpired é varredura de manutenção, não requisito de correção.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// CacheStatsReader expõe o resumo operacional do store (total de entradas,
// ativas e expiradas ainda não varridas). Todos os stores do pacote
// implementam; a interface existe para o endpoint de stats não depender de
// um backend concreto.
type CacheStatsReader interface {
	Stats(ctx context.Context) (domain.CacheStats, error)
}

// PatternPrefix extrai o prefixo literal de um padrão de invalidação,
// descartando o curinga final quando presente.
func PatternPrefix(pattern string) string {
	return strings.TrimSuffix(pattern, "*")
}
