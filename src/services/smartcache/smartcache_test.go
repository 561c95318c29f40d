package smartcache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/repositories"
	"ouvidoria-analytics/src/services/smartcache"
)

// brokenStore falha em tudo; serve para provar que o cache é otimização e
// não dependência de correção.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store offline")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store offline")
}

func (brokenStore) DeleteByPattern(context.Context, string) (int64, error) {
	return 0, errors.New("store offline")
}

func (brokenStore) DeleteExpired(context.Context) (int64, error) {
	return 0, errors.New("store offline")
}

var _ = Describe("SmartCache.GetOrCompute", func() {
	var (
		logger *slog.Logger
		store  *repositories.MemoryCacheStore
		cache  *smartcache.SmartCache
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		store = repositories.NewMemoryCacheStore()
		cache = smartcache.NewSmartCache(logger, store, domain.DefaultPolicy())
	})

	Context("miss then hit", func() {
		It("should compute once and serve identical bytes afterwards", func() {
			// ARRANGE
			var calls atomic.Int32
			compute := func(ctx context.Context) (interface{}, error) {
				calls.Add(1)
				return map[string]int{"total": 42}, nil
			}

			// ACT
			first, err := cache.GetOrCompute(ctx, "overview", "", nil, compute)
			Expect(err).NotTo(HaveOccurred())

			second, err := cache.GetOrCompute(ctx, "overview", "", nil, compute)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(calls.Load()).To(Equal(int32(1)))
			Expect([]byte(second)).To(Equal([]byte(first)))
		})
	})

	Context("different filters", func() {
		It("should keep independent entries", func() {
			// ARRANGE
			filters := domain.NewFilterSet()
			Expect(filters.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())

			// ACT
			unfiltered, err := cache.GetOrCompute(ctx, "overview", "", nil,
				func(ctx context.Context) (interface{}, error) { return "all", nil })
			Expect(err).NotTo(HaveOccurred())

			filtered, err := cache.GetOrCompute(ctx, "overview", "", filters,
				func(ctx context.Context) (interface{}, error) { return "open", nil })
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect([]byte(filtered)).NotTo(Equal([]byte(unfiltered)))
		})
	})

	Context("compute failure", func() {
		It("should propagate the error without caching it", func() {
			// ARRANGE
			boom := errors.New("aggregation exploded")

			// ACT
			_, err := cache.GetOrCompute(ctx, "overview", "", nil,
				func(ctx context.Context) (interface{}, error) { return nil, boom })

			// ASSERT
			Expect(err).To(MatchError(boom))

			// a chamada seguinte recomputa, nada ficou no cache
			payload, err := cache.GetOrCompute(ctx, "overview", "", nil,
				func(ctx context.Context) (interface{}, error) { return "ok", nil })
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload)).To(Equal(`"ok"`))
		})
	})

	Context("store failure", func() {
		It("should still answer the request computing directly", func() {
			// ARRANGE
			cache := smartcache.NewSmartCache(logger, brokenStore{}, domain.DefaultPolicy())

			// ACT
			payload, err := cache.GetOrCompute(ctx, "overview", "", nil,
				func(ctx context.Context) (interface{}, error) { return "fresh", nil })

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload)).To(Equal(`"fresh"`))
		})
	})

	Context("concurrent misses on the same key", func() {
		It("should run the computation a single time", func() {
			// ARRANGE
			const workers = 8
			var calls atomic.Int32
			release := make(chan struct{})

			compute := func(ctx context.Context) (interface{}, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			}

			// ACT
			var wg sync.WaitGroup
			results := make([][]byte, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()

					payload, err := cache.GetOrCompute(ctx, "overview", "", nil, compute)
					Expect(err).NotTo(HaveOccurred())
					results[i] = payload
				}(i)
			}

			// deixa todos chegarem no miss antes de liberar o cálculo
			time.Sleep(100 * time.Millisecond)
			close(release)
			wg.Wait()

			// ASSERT
			Expect(calls.Load()).To(Equal(int32(1)))
			for i := 1; i < workers; i++ {
				Expect(results[i]).To(Equal(results[0]))
			}
		})
	})
})
