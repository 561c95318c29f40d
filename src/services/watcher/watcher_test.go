package watcher_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/repositories"
	"ouvidoria-analytics/src/services/smartcache"
	"ouvidoria-analytics/src/services/watcher"
)

// scriptedFeed entrega os eventos programados e depois devolve o erro
// configurado, simulando queda do feed.
type scriptedFeed struct {
	events   []domain.ChangeEvent
	failWith error
	watches  atomic.Int32
}

func (f *scriptedFeed) Watch(ctx context.Context, handler func(context.Context, domain.ChangeEvent) error) error {
	f.watches.Add(1)

	for _, event := range f.events {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}

	if f.failWith != nil {
		return f.failWith
	}

	<-ctx.Done()
	return ctx.Err()
}

var _ = Describe("Watcher", func() {
	var (
		logger *slog.Logger
		store  *repositories.MemoryCacheStore
		policy domain.Policy
		ctx    context.Context
	)

	seed := func(keys ...string) {
		for _, key := range keys {
			Expect(store.Set(ctx, key, []byte(`{}`), time.Minute)).To(Succeed())
		}
	}

	exists := func(key string) bool {
		_, found, err := store.Get(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		return found
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		store = repositories.NewMemoryCacheStore()
		policy = domain.DefaultPolicy()
	})

	Context("HandleEvent", func() {
		It("should evict the patterns of the changed field plus the overview", func() {
			// ARRANGE
			seed("status:aaaa1111:v1", "statusOverview:bbbb2222:v1", "overview:cccc3333:v1", "tema:dddd4444:v1")
			w := watcher.NewWatcher(logger, nil, store, policy, time.Second)

			event := domain.ChangeEvent{
				Operation:     domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{"status": "Concluída"},
			}

			// ACT
			Expect(w.HandleEvent(ctx, event)).To(Succeed())

			// ASSERT
			Expect(exists("status:aaaa1111:v1")).To(BeFalse())
			Expect(exists("statusOverview:bbbb2222:v1")).To(BeFalse())
			Expect(exists("overview:cccc3333:v1")).To(BeFalse())

			// faceta de outro campo segue intacta
			Expect(exists("tema:dddd4444:v1")).To(BeTrue())
		})

		It("should not touch the store when nothing relevant changed", func() {
			// ARRANGE
			seed("overview:cccc3333:v1")
			w := watcher.NewWatcher(logger, nil, store, policy, time.Second)

			event := domain.ChangeEvent{
				Operation:     domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{"descricao": "texto novo"},
			}

			// ACT
			Expect(w.HandleEvent(ctx, event)).To(Succeed())

			// ASSERT
			Expect(exists("overview:cccc3333:v1")).To(BeTrue())
		})

		It("should evict everything derived on a delete", func() {
			// ARRANGE
			for _, field := range domain.RelevantFields() {
				for _, pattern := range policy.PatternsFor(field) {
					seed(repositories.PatternPrefix(pattern) + "ffff0000:v1")
				}
			}
			w := watcher.NewWatcher(logger, nil, store, policy, time.Second)

			// ACT
			Expect(w.HandleEvent(ctx, domain.ChangeEvent{Operation: domain.OperationDelete})).To(Succeed())

			// ASSERT
			deleted, err := store.DeleteByPattern(ctx, "*")
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeZero(), "expected the store to be fully evicted")
		})

		It("should only match keys from the key prefix, not substrings", func() {
			// ARRANGE: "uac:*" não pode derrubar chave de outro endpoint que
			// contenha "uac" no fingerprint
			seed("status:uac12345:v1")
			w := watcher.NewWatcher(logger, nil, store, policy, time.Second)

			event := domain.ChangeEvent{
				Operation:     domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{"unidadeCadastro": "Unidade X"},
			}

			// ACT
			Expect(w.HandleEvent(ctx, event)).To(Succeed())

			// ASSERT
			Expect(exists("status:uac12345:v1")).To(BeTrue())
		})
	})

	Context("end to end with the cache orchestrator", func() {
		It("should force a recomputation after a relevant write", func() {
			// ARRANGE
			cache := smartcache.NewSmartCache(logger, store, policy)
			w := watcher.NewWatcher(logger, nil, store, policy, time.Second)

			var version atomic.Int32
			compute := func(ctx context.Context) (interface{}, error) {
				return map[string]int32{"version": version.Add(1)}, nil
			}

			first, err := cache.GetOrCompute(ctx, "overview", "", nil, compute)
			Expect(err).NotTo(HaveOccurred())

			// ACT: escrita relevante chega pelo feed
			event := domain.ChangeEvent{
				Operation:     domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{"status": "Concluída"},
			}
			Expect(w.HandleEvent(ctx, event)).To(Succeed())

			second, err := cache.GetOrCompute(ctx, "overview", "", nil, compute)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(string(second)).NotTo(Equal(string(first)))
			Expect(version.Load()).To(Equal(int32(2)))
		})
	})

	Context("Run", func() {
		It("should resubscribe after the feed drops", func() {
			// ARRANGE
			feed := &scriptedFeed{failWith: errors.New("stream lost")}
			w := watcher.NewWatcher(logger, feed, store, policy, 10*time.Millisecond)

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)

			// ACT
			go func() { done <- w.Run(runCtx) }()

			Eventually(func() int32 { return feed.watches.Load() }).
				WithTimeout(time.Second).
				Should(BeNumerically(">=", 2))

			cancel()

			// ASSERT
			Eventually(done).WithTimeout(time.Second).Should(Receive(BeNil()))
			Expect(w.State()).To(Equal(watcher.StateStopped))
		})

		It("should stop cleanly when the context is cancelled mid-watch", func() {
			// ARRANGE
			feed := &scriptedFeed{}
			w := watcher.NewWatcher(logger, feed, store, policy, 10*time.Millisecond)

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)

			go func() { done <- w.Run(runCtx) }()

			Eventually(func() watcher.State { return w.State() }).
				WithTimeout(time.Second).
				Should(Equal(watcher.StateWatching))

			// ACT
			cancel()

			// ASSERT
			Eventually(done).WithTimeout(time.Second).Should(Receive(BeNil()))
			Expect(w.State()).To(Equal(watcher.StateStopped))
		})
	})
})
