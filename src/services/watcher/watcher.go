package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/repositories"
)

// DefaultReconnectDelay é a espera fixa entre tentativas de reconexão ao
// feed. Fixa de propósito: o feed cai raramente e por pouco tempo, backoff
// exponencial aqui só atrasaria a retomada.
const DefaultReconnectDelay = 5 * time.Second

// ChangeFeed é a fonte de eventos de mudança que o watcher consome. Watch
// bloqueia entregando eventos ao handler até o contexto ser cancelado ou o
// feed cair; cair devolve erro e o watcher decide reconectar.
type ChangeFeed interface {
	Watch(ctx context.Context, handler func(ctx context.Context, event domain.ChangeEvent) error) error
}

// State é o estado observável do watcher.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateWatching
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateWatching:
		return "watching"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Watcher assina um ChangeFeed e traduz cada evento em invalidações de
// cache: deriva os campos tocados, resolve os padrões de chave da política
// e apaga as entradas correspondentes. Reconecta sozinho quando o feed cai.
type Watcher struct {
	logger         *slog.Logger
	feed           ChangeFeed
	store          repositories.CacheStore
	policy         domain.Policy
	reconnectDelay time.Duration
	state          atomic.Int32
}

func NewWatcher(logger *slog.Logger, feed ChangeFeed, store repositories.CacheStore, policy domain.Policy, reconnectDelay time.Duration) *Watcher {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}

	return &Watcher{
		logger:         logger,
		feed:           feed,
		store:          store,
		policy:         policy,
		reconnectDelay: reconnectDelay,
	}
}

// State devolve o estado corrente; seguro para leitura concorrente.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// Run assina o feed e processa eventos até o contexto ser cancelado. Queda
// do feed vira reconexão com espera fixa; eventos perdidos durante a janela
// desconectada expiram pelo TTL das entradas, então a reconexão não precisa
// de replay.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.state.Store(int32(StateStopped))

	for {
		w.state.Store(int32(StateStarting))
		w.logger.Info("Subscribing to change feed")

		w.state.Store(int32(StateWatching))
		err := w.feed.Watch(ctx, w.HandleEvent)

		if ctx.Err() != nil {
			w.logger.Info("Change feed watcher stopped")
			return nil
		}

		w.state.Store(int32(StateReconnecting))
		w.logger.Error("Change feed disconnected, reconnecting",
			slog.String("error", fmt.Sprintf("%v", err)),
			slog.Duration("delay", w.reconnectDelay),
		)

		select {
		case <-ctx.Done():
			w.logger.Info("Change feed watcher stopped")
			return nil
		case <-time.After(w.reconnectDelay):
		}
	}
}

// HandleEvent invalida as entradas de cache afetadas por um evento. Falha
// parcial num padrão não interrompe os demais: sobrar entrada viva é
// recuperável pelo TTL, parar de invalidar não é.
func (w *Watcher) HandleEvent(ctx context.Context, event domain.ChangeEvent) error {
	fields := ChangedFields(event)
	if len(fields) == 0 {
		return nil
	}

	patterns := w.patternsFor(fields)

	var totalDeleted int64
	var failed int

	for _, pattern := range patterns {
		deleted, err := w.store.DeleteByPattern(ctx, pattern)
		if err != nil {
			failed++
			w.logger.Error("Failed to invalidate cache pattern",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()),
			)
			continue
		}
		totalDeleted += deleted
	}

	w.logger.Info("Cache invalidated for change event",
		slog.String("operation", string(event.Operation)),
		slog.String("document_id", event.DocumentID),
		slog.Int("changed_fields", len(fields)),
		slog.Int("patterns", len(patterns)),
		slog.Int64("entries_deleted", totalDeleted),
	)

	if failed > 0 {
		return fmt.Errorf("Watcher.HandleEvent - %d of %d patterns failed to invalidate", failed, len(patterns))
	}

	return nil
}

// patternsFor resolve e deduplica os padrões dos campos tocados, em ordem
// estável. Campos distintos compartilham padrões (overview:* aparece em
// todos), então a deduplicação evita varreduras repetidas no store.
func (w *Watcher) patternsFor(fields []domain.Field) []string {
	seen := make(map[string]bool)

	for _, field := range fields {
		for _, pattern := range w.policy.PatternsFor(field) {
			seen[pattern] = true
		}
	}

	patterns := make([]string, 0, len(seen))
	for pattern := range seen {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	return patterns
}
