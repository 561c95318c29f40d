package watcher_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/services/watcher"
)

var _ = Describe("ChangedFields", func() {
	Context("insert events", func() {
		It("should report only relevant fields present with non-null values", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationInsert,
				FullDocument: map[string]interface{}{
					"protocolo": "2026-000123",
					"status":    "Aberta",
					"tema":      "Saúde",
					"canal":     "",
					"bairro":    nil,
					"descricao": "texto livre irrelevante",
				},
			}

			// ACT
			fields := watcher.ChangedFields(event)

			// ASSERT
			Expect(fields).To(Equal([]domain.Field{domain.FieldStatus, domain.FieldTema}))
		})
	})

	Context("update events", func() {
		It("should derive from the updated and removed paths", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{
					"status":    "Concluída",
					"descricao": "irrelevante",
				},
				RemovedFields: []string{"prioridade"},
			}

			// ACT
			fields := watcher.ChangedFields(event)

			// ASSERT
			Expect(fields).To(Equal([]domain.Field{domain.FieldStatus, domain.FieldPrioridade}))
		})

		It("should strip operator prefixes from field paths", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{
					"$set.tema": "Educação",
				},
				RemovedFields: []string{"$unset.canal"},
			}

			// ACT
			fields := watcher.ChangedFields(event)

			// ASSERT
			Expect(fields).To(Equal([]domain.Field{domain.FieldTema, domain.FieldCanal}))
		})

		It("should truncate nested paths to their top-level field", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{
					"orgaos.0.nome": "Secretaria de Obras",
				},
			}

			// ACT
			fields := watcher.ChangedFields(event)

			// ASSERT
			Expect(fields).To(Equal([]domain.Field{domain.FieldOrgaos}))
		})

		It("should report nothing when only irrelevant fields changed", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{
					"descricao": "novo texto",
					"updatedAt": "2026-09-01",
				},
			}

			// ACT + ASSERT
			Expect(watcher.ChangedFields(event)).To(BeEmpty())
		})

		It("should deduplicate a field touched by set and unset at once", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationUpdate,
				UpdatedFields: map[string]interface{}{
					"$set.status": "Aberta",
				},
				RemovedFields: []string{"status"},
			}

			// ACT + ASSERT
			Expect(watcher.ChangedFields(event)).To(Equal([]domain.Field{domain.FieldStatus}))
		})
	})

	Context("delete events", func() {
		It("should assume every relevant field changed", func() {
			// ARRANGE
			event := domain.ChangeEvent{Operation: domain.OperationDelete}

			// ACT + ASSERT
			Expect(watcher.ChangedFields(event)).To(Equal(domain.RelevantFields()))
		})
	})

	Context("replace events", func() {
		It("should behave like an insert over the new document", func() {
			// ARRANGE
			event := domain.ChangeEvent{
				Operation: domain.OperationReplace,
				FullDocument: map[string]interface{}{
					"canal": "Portal",
				},
			}

			// ACT + ASSERT
			Expect(watcher.ChangedFields(event)).To(Equal([]domain.Field{domain.FieldCanal}))
		})
	})
})
