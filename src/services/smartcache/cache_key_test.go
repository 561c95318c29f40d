package smartcache_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/services/smartcache"
)

var _ = Describe("MakeKey", func() {
	Context("key shape", func() {
		It("should produce endpoint:fingerprint:version", func() {
			// ACT
			key := smartcache.MakeKey("overview", "", nil, "v1")

			// ASSERT
			parts := strings.Split(key, ":")
			Expect(parts).To(HaveLen(3))
			Expect(parts[0]).To(Equal("overview"))
			Expect(parts[1]).To(HaveLen(8))
			Expect(parts[2]).To(Equal("v1"))
		})
	})

	Context("stability", func() {
		When("the same filters are inserted in different orders", func() {
			It("should derive the same key", func() {
				// ARRANGE
				first := domain.NewFilterSet()
				Expect(first.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())
				Expect(first.SetIn(domain.FieldTema, []string{"Saúde", "Educação"})).To(Succeed())

				second := domain.NewFilterSet()
				Expect(second.SetIn(domain.FieldTema, []string{"Educação", "Saúde"})).To(Succeed())
				Expect(second.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())

				// ACT + ASSERT
				Expect(smartcache.MakeKey("overview", "", first, "v1")).
					To(Equal(smartcache.MakeKey("overview", "", second, "v1")))
			})
		})
	})

	Context("discrimination", func() {
		It("should change with the endpoint", func() {
			Expect(smartcache.MakeKey("overview", "", nil, "v1")).
				NotTo(Equal(smartcache.MakeKey("status", "", nil, "v1")))
		})

		It("should change with the filters", func() {
			filters := domain.NewFilterSet()
			Expect(filters.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())

			Expect(smartcache.MakeKey("overview", "", filters, "v1")).
				NotTo(Equal(smartcache.MakeKey("overview", "", nil, "v1")))
		})

		It("should change with the qualifier", func() {
			Expect(smartcache.MakeKey("distinct", "tema", nil, "v1")).
				NotTo(Equal(smartcache.MakeKey("distinct", "assunto", nil, "v1")))
		})

		It("should change with the schema version", func() {
			Expect(smartcache.MakeKey("overview", "", nil, "v1")).
				NotTo(Equal(smartcache.MakeKey("overview", "", nil, "v2")))
		})

		It("should treat nil filters and an empty set as the same signature", func() {
			Expect(smartcache.MakeKey("overview", "", nil, "v1")).
				To(Equal(smartcache.MakeKey("overview", "", domain.NewFilterSet(), "v1")))
		})
	})
})
