package domain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ouvidoria-analytics/src/domain"
)

var _ = Describe("FilterSet", func() {
	Context("field validation", func() {
		When("setting a condition on a field outside the vocabulary", func() {
			It("should reject with ErrInvalidFilter", func() {
				// ARRANGE
				filters := domain.NewFilterSet()

				// ACT
				err := filters.SetEquals("campoInventado", "x")

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidFilter))
				Expect(filters.IsEmpty()).To(BeTrue())
			})
		})

		When("setting an equality with empty value", func() {
			It("should remove any previous condition", func() {
				// ARRANGE
				filters := domain.NewFilterSet()
				Expect(filters.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())

				// ACT
				Expect(filters.SetEquals(domain.FieldStatus, "")).To(Succeed())

				// ASSERT
				Expect(filters.IsEmpty()).To(BeTrue())
			})
		})
	})

	Context("date range validation", func() {
		When("a bound is not an ISO date", func() {
			It("should reject with ErrInvalidFilter", func() {
				// ARRANGE
				filters := domain.NewFilterSet()

				// ACT
				err := filters.SetDateRange("15/03/2024", "")

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidFilter))
			})
		})

		When("only one bound is given", func() {
			It("should accept the open-ended range", func() {
				// ARRANGE
				filters := domain.NewFilterSet()

				// ACT
				err := filters.SetDateRange("2024-01-01", "")

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(filters.DateRange().From).To(Equal("2024-01-01"))
				Expect(filters.DateRange().To).To(BeEmpty())
			})
		})
	})

	Context("normalization", func() {
		When("the same conditions are inserted in different orders", func() {
			It("should produce identical signatures", func() {
				// ARRANGE
				first := domain.NewFilterSet()
				Expect(first.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())
				Expect(first.SetIn(domain.FieldTema, []string{"Saúde", "Educação"})).To(Succeed())
				Expect(first.SetDateRange("2024-01-01", "2024-06-30")).To(Succeed())

				second := domain.NewFilterSet()
				Expect(second.SetDateRange("2024-01-01", "2024-06-30")).To(Succeed())
				Expect(second.SetIn(domain.FieldTema, []string{"Educação", "Saúde"})).To(Succeed())
				Expect(second.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())

				// ACT + ASSERT
				Expect(first.Normalize()).To(Equal(second.Normalize()))
			})
		})

		When("conditions differ", func() {
			It("should produce different signatures", func() {
				// ARRANGE
				first := domain.NewFilterSet()
				Expect(first.SetEquals(domain.FieldStatus, "Aberta")).To(Succeed())

				second := domain.NewFilterSet()
				Expect(second.SetEquals(domain.FieldStatus, "Concluída")).To(Succeed())

				// ACT + ASSERT
				Expect(first.Normalize()).NotTo(Equal(second.Normalize()))
			})
		})

		When("the filter set is empty", func() {
			It("should normalize to the empty signature", func() {
				Expect(domain.NewFilterSet().Normalize()).To(BeEmpty())
			})
		})

		It("should serialize each condition kind in its own notation", func() {
			// ARRANGE
			filters := domain.NewFilterSet()
			Expect(filters.SetEquals(domain.FieldCanal, "Portal")).To(Succeed())
			Expect(filters.SetIn(domain.FieldStatus, []string{"B", "A"})).To(Succeed())
			Expect(filters.SetDateRange("2024-01-01", "2024-02-01")).To(Succeed())

			// ACT
			normalized := filters.Normalize()

			// ASSERT
			Expect(normalized).To(Equal("canal=eq:Portal|status=in:[A,B]|data=2024-01-01..2024-02-01"))
		})
	})

	Context("set membership cleanup", func() {
		When("the value list contains empty strings", func() {
			It("should drop them before registering", func() {
				// ARRANGE
				filters := domain.NewFilterSet()

				// ACT
				Expect(filters.SetIn(domain.FieldTema, []string{"", "Saúde", ""})).To(Succeed())

				// ASSERT
				cond, ok := filters.Condition(domain.FieldTema)
				Expect(ok).To(BeTrue())
				Expect(cond.Values).To(Equal([]string{"Saúde"}))
			})
		})

		When("the value list is entirely empty", func() {
			It("should remove the condition", func() {
				// ARRANGE
				filters := domain.NewFilterSet()
				Expect(filters.SetIn(domain.FieldTema, []string{"Saúde"})).To(Succeed())

				// ACT
				Expect(filters.SetIn(domain.FieldTema, nil)).To(Succeed())

				// ASSERT
				Expect(filters.IsEmpty()).To(BeTrue())
			})
		})
	})
})
